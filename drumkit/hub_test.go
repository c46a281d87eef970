package drumkit

import "testing"

func TestKeyHub(t *testing.T) {
	t.Run("DispatchWithoutListeners", func(t *testing.T) {
		h := NewKeyHub()
		h.Dispatch("a")
		if h.Listeners() != 0 {
			t.Errorf("expected no listeners, got %d", h.Listeners())
		}
	})

	t.Run("DispatchInOrder", func(t *testing.T) {
		h := NewKeyHub()
		var got []string
		h.OnKeyDown(func(key string) { got = append(got, "first:"+key) })
		h.OnKeyDown(func(key string) { got = append(got, "second:"+key) })

		h.Dispatch("ArrowUp")

		want := []string{"first:ArrowUp", "second:ArrowUp"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("expected %s, got %s", want[i], got[i])
			}
		}
	})

	t.Run("ListenerMayRegisterAnother", func(t *testing.T) {
		h := NewKeyHub()
		calls := 0
		h.OnKeyDown(func(key string) {
			calls++
			if calls == 1 {
				h.OnKeyDown(func(string) { calls += 10 })
			}
		})

		h.Dispatch("a")
		if calls != 1 {
			t.Errorf("listener added during dispatch should wait for the next key, calls=%d", calls)
		}
		h.Dispatch("a")
		if calls != 12 {
			t.Errorf("expected both listeners on second dispatch, calls=%d", calls)
		}
	})
}
