package domain

import "testing"

func TestClassifyPhaseThresholds(t *testing.T) {
	cases := []struct {
		count int
		want  Phase
	}{
		{-1, PhaseDiscovery},
		{0, PhaseDiscovery},
		{2, PhaseDiscovery},
		{3, PhaseEvaluation},
		{7, PhaseEvaluation},
		{8, PhaseClosing},
		{200, PhaseClosing},
	}
	for _, tc := range cases {
		if got := ClassifyPhase(tc.count); got != tc.want {
			t.Errorf("ClassifyPhase(%d) = %s, want %s", tc.count, got, tc.want)
		}
	}
}

func TestClassifyPhaseMonotonic(t *testing.T) {
	rank := map[Phase]int{PhaseDiscovery: 0, PhaseEvaluation: 1, PhaseClosing: 2}
	prev := rank[ClassifyPhase(0)]
	for n := 1; n < 50; n++ {
		cur := rank[ClassifyPhase(n)]
		if cur < prev {
			t.Fatalf("phase moved backward at count %d", n)
		}
		prev = cur
	}
}

func TestChannelLabel(t *testing.T) {
	if ChannelWeb.Label() != "Web" || ChannelWhatsApp.Label() != "WhatsApp" {
		t.Fatalf("unexpected labels %q %q", ChannelWeb.Label(), ChannelWhatsApp.Label())
	}
	if Channel("sms").Valid() {
		t.Fatal("sms must not be a valid channel")
	}
}
