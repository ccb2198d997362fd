package action

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    Kind
		wantErr bool
	}{
		{kind: KindSync},
		{kind: KindAsync},
		{kind: KindGenerator},
		{kind: "", wantErr: true},
		{kind: "callback", wantErr: true},
	}

	for _, testCase := range tests {
		err := testCase.kind.Validate()
		if (err != nil) != testCase.wantErr {
			t.Fatalf("Kind(%q).Validate() error = %v, wantErr %v", testCase.kind, err, testCase.wantErr)
		}
	}
}

func TestInvocableIdentity(t *testing.T) {
	t.Parallel()

	first := Sync(add)
	copied := first
	second := Sync(add)

	if !first.Equal(copied) || first != copied {
		t.Fatal("copies of one invocable must share identity")
	}
	if first.Equal(second) {
		t.Fatal("separate constructions must not share identity")
	}
	if !(Invocable{}).Equal(Invocable{}) {
		t.Fatal("zero invocables must be equal")
	}
}

func TestNilFuncConstructorsYieldZero(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]Invocable{
		"sync":      Sync(nil),
		"async":     Async(nil),
		"generator": Generator(nil),
		"go":        Go(nil),
	} {
		if !fn.IsZero() {
			t.Fatalf("%s(nil) is not zero", name)
		}
		if err := fn.Validate(); !errors.Is(err, ErrUninitialized) {
			t.Fatalf("%s(nil).Validate() = %v, want %v", name, err, ErrUninitialized)
		}
	}
}

func TestInvokeTolerantOfNilReturns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	nilDeferred := Async(func(context.Context, ...any) *Deferred { return nil })
	if _, err := nilDeferred.Invoke(ctx).Await(ctx); !errors.Is(err, errNilDeferred) {
		t.Fatalf("nil deferred Await error = %v, want %v", err, errNilDeferred)
	}

	nilSeq := Generator(func(context.Context, ...any) iter.Seq2[any, error] { return nil })
	values, err := nilSeq.Invoke(ctx).Await(ctx)
	if err != nil {
		t.Fatalf("nil sequence Await failed: %v", err)
	}
	if diff := cmp.Diff([]any{}, values); diff != "" {
		t.Fatalf("nil sequence values mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratorStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	endless := Generator(func(context.Context, ...any) iter.Seq2[any, error] {
		return func(yield func(any, error) bool) {
			for idx := 0; ; idx++ {
				if !yield(idx, nil) {
					return
				}
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := endless.Invoke(ctx).Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Await error = %v, want %v", err, context.Canceled)
	}
}

func TestInvokeZeroInvocable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	result := Invocable{}.Invoke(ctx, 1, 2)
	if result.Kind() != "" {
		t.Fatalf("kind = %q, want empty", result.Kind())
	}
	if _, err := result.Await(ctx); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("Await error = %v, want %v", err, ErrUninitialized)
	}
}
