package gpu

import "testing"

func TestClassifyDiscreteWins(t *testing.T) {
	info := Classify([]string{
		"00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 630",
		"01:00.0 VGA compatible controller: NVIDIA Corporation GeForce RTX 3060",
	})
	if !info.Available {
		t.Fatal("expected acceleration available")
	}
	if !info.Discrete {
		t.Fatal("expected discrete adapter to win classification")
	}
}

func TestClassifyIntegratedStillAvailable(t *testing.T) {
	info := Classify([]string{
		"00:02.0 VGA compatible controller: Intel Corporation Iris Xe Graphics",
	})
	if !info.Available {
		t.Fatal("integrated adapter should still permit acceleration")
	}
	if info.Discrete {
		t.Fatal("integrated adapter must not classify as discrete")
	}
}

func TestClassifyUnknownAdapterPermitted(t *testing.T) {
	info := Classify([]string{
		"00:01.0 VGA compatible controller: Red Hat, Inc. Virtio GPU",
	})
	if !info.Available {
		t.Fatal("unknown adapter should permit acceleration")
	}
}

func TestClassifyEmpty(t *testing.T) {
	info := Classify(nil)
	if info.Available {
		t.Fatal("no adapters must not report acceleration")
	}
	if info.Description == "" {
		t.Fatal("expected a descriptive message for the no-adapter case")
	}
}
