package logger

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		log, err := New(env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		_ = log.Sync()
	}
}

func TestProductionSkipsDebug(t *testing.T) {
	log, err := New("production")
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(-1) {
		t.Fatal("production logger should not enable debug")
	}
}
