package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/physics"
)

func smallBlob() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Vertices = 16
	cfg.Radius = 30
	cfg.SubSteps = 10
	cfg.Frames = 120
	return cfg
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.ListIntegrators() {
		if _, err := r.GetIntegrator(name, physics.DefaultParams()); err != nil {
			t.Errorf("integrator %s: %v", name, err)
		}
	}
	if _, err := r.GetIntegrator("rk4", physics.DefaultParams()); err == nil {
		t.Error("expected unknown integrator error")
	}

	scenes := r.ListScenes()
	if len(scenes) != 7 || scenes[0] != "balance" {
		t.Errorf("scenes %v", scenes)
	}
	if _, err := r.GetScene("nope"); err == nil {
		t.Error("expected unknown scene error")
	}
}

func TestRunScenes(t *testing.T) {
	for _, scene := range NewRegistry().ListScenes() {
		t.Run(scene, func(t *testing.T) {
			out, err := Run(context.Background(), Config{Blob: smallBlob(), Scene: scene, RecordEvery: 10})
			if err != nil {
				t.Fatal(err)
			}
			if out.Result.Frames != 120 {
				t.Errorf("ran %d frames", out.Result.Frames)
			}
			if len(out.Frames) < 12 {
				t.Errorf("recorded %d frames", len(out.Frames))
			}
			if out.Meta.Name != scene || out.Meta.Vertices != 16 {
				t.Errorf("metadata %+v", out.Meta)
			}
			if _, ok := out.Result.Metrics["stability"]; !ok {
				t.Error("stability metric missing")
			}
		})
	}
}

func TestPokeSceneResets(t *testing.T) {
	out, err := Run(context.Background(), Config{Blob: smallBlob(), Scene: "poke"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Resets < 2 {
		t.Errorf("expected a reset per poke, got %d", out.Result.Resets)
	}
	if out.Result.Metrics["stability"] >= 1 {
		t.Errorf("stability %v should reflect resets", out.Result.Metrics["stability"])
	}
}

func TestVerletRun(t *testing.T) {
	blob := smallBlob()
	blob.Integrator = "verlet"
	out, err := Run(context.Background(), Config{Blob: blob, Scene: "drag"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Meta.Integrator != "verlet" {
		t.Errorf("integrator %s", out.Meta.Integrator)
	}
}

func TestRunInvalid(t *testing.T) {
	blob := smallBlob()
	blob.Vertices = 1
	if _, err := Run(context.Background(), Config{Blob: blob}); err == nil {
		t.Error("expected validation error")
	}

	e := New(Config{Blob: smallBlob()})
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
}
