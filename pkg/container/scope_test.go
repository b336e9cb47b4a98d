package container

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestScopeRegistry_UnknownScope(t *testing.T) {
	r := newScopeRegistry()
	_, err := r.lookup("conversation")
	if err == nil {
		t.Fatalf("Expected unknown scope error")
	}
	var e *Error
	if !errors.As(err, &e) || e.Code != ErrCodeUnknownScope {
		t.Fatalf("Expected code %s, got: %v", ErrCodeUnknownScope, err)
	}
	for _, id := range []string{ScopeSingleton, ScopePrototype, ScopeRequest, ScopeSession} {
		if !strings.Contains(e.Message, id) {
			t.Errorf("Expected registered scope %s named in message: %s", id, e.Message)
		}
	}
}

func TestSingletonScope_CreatesOnce(t *testing.T) {
	s := newSingletonScope()
	var calls int32

	create := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return "instance", nil
	}

	first, err := s.Get("a", create)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := s.Get("a", create)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical instances")
	}
	if calls != 1 {
		t.Errorf("Expected 1 factory call, got %d", calls)
	}
}

func TestSingletonScope_ConcurrentFirstGet(t *testing.T) {
	s := newSingletonScope()
	var calls int32

	create := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return new(int), nil
	}

	const goroutines = 50
	results := make([]any, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Get("shared", create)
			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("Expected exactly 1 factory call, got %d", calls)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("Expected every caller to observe the same instance")
		}
	}
}

func TestSingletonScope_MemoizesError(t *testing.T) {
	s := newSingletonScope()
	var calls int32

	create := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, fmt.Errorf("boom")
	}

	if _, err := s.Get("a", create); err == nil {
		t.Fatalf("Expected error")
	}
	_, err := s.Get("a", create)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("Expected memoized original error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 factory call, got %d", calls)
	}
}

func TestSingletonScope_IndependentEntries(t *testing.T) {
	s := newSingletonScope()

	// Creating one name must not serialize against creating another:
	// b's factory runs while a's factory is still in flight.
	aStarted := make(chan struct{})
	aRelease := make(chan struct{})

	go func() {
		_, _ = s.Get("a", func() (any, error) {
			close(aStarted)
			<-aRelease
			return "a", nil
		})
	}()

	<-aStarted
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Get("b", func() (any, error) { return "b", nil }); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	}()
	<-done
	close(aRelease)
}

func TestPrototypeScope_FreshInstances(t *testing.T) {
	s := newPrototypeScope()
	var calls int32

	create := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return new(int), nil
	}

	first, _ := s.Get("a", create)
	second, _ := s.Get("a", create)
	if first == second {
		t.Errorf("Expected distinct instances")
	}
	if calls != 2 {
		t.Errorf("Expected 2 factory calls, got %d", calls)
	}
}

func TestContextScope_RequiresBoundContext(t *testing.T) {
	s := newContextScope(ScopeRequest)

	_, err := s.Get("handler", func() (any, error) { return "h", nil })
	if err == nil {
		t.Fatalf("Expected error without bound context")
	}
	var e *Error
	if !errors.As(err, &e) || e.Code != ErrCodeNoContext {
		t.Fatalf("Expected code %s, got: %v", ErrCodeNoContext, err)
	}
	if !IsScope(err) {
		t.Errorf("Expected a scope-class error")
	}

	// Binding a context and retrying recovers.
	s.Bind(NewContextID())
	if _, err := s.Get("handler", func() (any, error) { return "h", nil }); err != nil {
		t.Errorf("Expected retry after binding to succeed, got: %v", err)
	}
}

func TestContextScope_IsolatesContexts(t *testing.T) {
	s := newContextScope(ScopeSession)
	var calls int32
	create := func() (any, error) {
		atomic.AddInt32(&calls, 1)
		return new(int), nil
	}

	ctxA, ctxB := NewContextID(), NewContextID()

	s.Bind(ctxA)
	inA, _ := s.Get("state", create)
	again, _ := s.Get("state", create)
	if inA != again {
		t.Errorf("Expected cached instance within one context")
	}

	s.Bind(ctxB)
	inB, _ := s.Get("state", create)
	if inA == inB {
		t.Errorf("Expected distinct instances across contexts")
	}
	if calls != 2 {
		t.Errorf("Expected 2 factory calls, got %d", calls)
	}

	// Rebinding the first context sees its original instance.
	s.Bind(ctxA)
	back, _ := s.Get("state", create)
	if back != inA {
		t.Errorf("Expected original instance after rebinding")
	}
}

func TestContextScope_RebindDuringCreationKeepsOriginalContext(t *testing.T) {
	s := newContextScope(ScopeRequest)
	ctxA, ctxB := NewContextID(), NewContextID()
	s.Bind(ctxA)

	entered := make(chan struct{})
	release := make(chan struct{})
	created := make(chan any, 1)
	go func() {
		v, err := s.Get("conn", func() (any, error) {
			close(entered)
			<-release
			return new(int), nil
		})
		if err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		created <- v
	}()

	// Rebind while the factory is mid creation; the instance must still
	// land in the context that was active when creation began.
	<-entered
	s.Bind(ctxB)
	close(release)
	inA := <-created

	s.Bind(ctxA)
	again, err := s.Get("conn", func() (any, error) { return new(int), nil })
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if again != inA {
		t.Errorf("Expected instance cached under the original context")
	}

	s.Bind(ctxB)
	inB, err := s.Get("conn", func() (any, error) { return new(int), nil })
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if inB == inA {
		t.Errorf("Expected the rebound context not to inherit the instance")
	}
}

func TestContextScope_ClearContextReleases(t *testing.T) {
	s := newContextScope(ScopeSession)
	ctxID := NewContextID()
	s.Bind(ctxID)
	if _, err := s.Get("state", func() (any, error) { return "v", nil }); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var released []string
	s.ClearContext(ctxID, func(name string, _ any) {
		released = append(released, name)
	})
	if len(released) != 1 || released[0] != "state" {
		t.Errorf("Expected state released, got %v", released)
	}

	// The cleared context is gone; resolving needs a fresh bind.
	if _, err := s.Get("state", func() (any, error) { return "v", nil }); err == nil {
		t.Errorf("Expected error after context cleared")
	}
}
