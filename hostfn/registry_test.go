package hostfn

import "testing"

type fakeCtx struct{}

func (fakeCtx) ReadRegister(name, path string) (uint64, error)  { return 0, nil }
func (fakeCtx) WriteRegister(name, path string, value uint64) error { return nil }

func TestRegisterAndCall(t *testing.T) {
	r := NewRegistry()
	r.Register("add_with_carry", func(ctx Context, args []int64) ([]int64, error) {
		sum := args[0] + args[1]
		carry := int64(0)
		if sum > 0xFFFFFFFF {
			carry = 1
		}
		return []int64{sum, carry}, nil
	})

	results, err := r.Call(fakeCtx{}, "add_with_carry", []int64{7, 35})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 2 || results[0] != 42 || results[1] != 0 {
		t.Fatalf("results = %v, want [42 0]", results)
	}
}

func TestCallMissingFunction(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call(fakeCtx{}, "nonexistent", nil)
	if _, ok := err.(*MissingHostFn); !ok {
		t.Fatalf("expected *MissingHostFn, got %v", err)
	}
}

func TestRequireAll(t *testing.T) {
	r := NewRegistry()
	r.Register("add_with_carry", func(ctx Context, args []int64) ([]int64, error) { return nil, nil })

	if err := r.RequireAll([]string{"add_with_carry"}); err != nil {
		t.Fatalf("RequireAll: %v", err)
	}
	if err := r.RequireAll([]string{"add_with_carry", "missing"}); err == nil {
		t.Fatalf("expected error for missing function")
	}
}

func TestLuaProviderRegisterScript(t *testing.T) {
	p := NewLuaProvider()
	defer p.Close()

	r := NewRegistry()
	err := p.RegisterScript(r, "double", "return args[1] * 2")
	if err != nil {
		t.Fatalf("RegisterScript: %v", err)
	}

	results, err := r.Call(fakeCtx{}, "double", []int64{21})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || results[0] != 42 {
		t.Fatalf("results = %v, want [42]", results)
	}
}
