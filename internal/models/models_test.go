package models

import (
	"slices"
	"testing"
)

func TestSource_ResolveSourceBranch(t *testing.T) {
	app := NewSource("worker app", "./")
	resources := NewSource("partner resources", "../frontend-partner-resources").
		WithDefaultSourceBranch("worker/merged")

	tests := []struct {
		name      string
		source    Source
		requested string
		want      string
	}{
		{"no override on default", app, "develop", "develop"},
		{"no override on release", app, "release-5.0", "release-5.0"},
		{"override on default", resources, "develop", "worker/merged"},
		{"override ignored on release", resources, "release-5.0", "release-5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.source.ResolveSourceBranch(tt.requested, "develop")
			if got != tt.want {
				t.Errorf("ResolveSourceBranch(%q) = %q, want %q", tt.requested, got, tt.want)
			}
		})
	}
}

func TestSource_HasRemote(t *testing.T) {
	s := NewSource("app", ".")
	if s.HasRemote() {
		t.Error("HasRemote() = true without owner/repo")
	}
	if !s.WithRemote("acme", "app").HasRemote() {
		t.Error("HasRemote() = false with owner/repo")
	}
}

func TestComparison_Messages(t *testing.T) {
	var c Comparison
	c.Status = ComparisonDiverged
	c.Commits = make([]ComparisonCommit, 2)
	c.Commits[0].Commit.Message = "AFE-1 first"
	c.Commits[1].Commit.Message = "AFE-2 second"

	if got := c.Messages(); !slices.Equal(got, []string{"AFE-1 first", "AFE-2 second"}) {
		t.Errorf("Messages() = %q", got)
	}

	c.Status = ComparisonIdentical
	if got := c.Messages(); len(got) != 0 {
		t.Errorf("Messages() for identical = %q, want empty", got)
	}

	var nilComparison *Comparison
	if got := nilComparison.Messages(); got == nil || len(got) != 0 {
		t.Errorf("Messages() on nil = %#v, want empty slice", got)
	}
}

func TestOnelineMessages(t *testing.T) {
	commits := []CommitInfo{
		NewCommitInfo("abc1234", "AFE-1 add thing"),
		NewCommitInfo("", "bare message"),
	}
	want := []string{"abc1234 AFE-1 add thing", "bare message"}
	if got := OnelineMessages(commits); !slices.Equal(got, want) {
		t.Errorf("OnelineMessages() = %q, want %q", got, want)
	}
}

func TestSourceStatus(t *testing.T) {
	tests := []struct {
		status SourceStatus
		name   string
		reason string
	}{
		{Reconciled, "reconciled", ""},
		{Skipped("no remote configured"), "skipped", "no remote configured"},
		{Failed("git fetch: timeout"), "failed", "git fetch: timeout"},
		{nil, "pending", ""},
	}

	for _, tt := range tests {
		if got := StatusName(tt.status); got != tt.name {
			t.Errorf("StatusName(%#v) = %q, want %q", tt.status, got, tt.name)
		}
		if got := GetStatusReason(tt.status); got != tt.reason {
			t.Errorf("GetStatusReason(%#v) = %q, want %q", tt.status, got, tt.reason)
		}
	}

	if !IsStatusReconciled(Reconciled) || IsStatusFailed(Reconciled) || IsStatusSkipped(Reconciled) {
		t.Error("Reconciled predicates wrong")
	}
}

func TestParseResponseType(t *testing.T) {
	for _, name := range ResponseTypeNames {
		rt, err := ParseResponseType(name)
		if err != nil {
			t.Fatalf("ParseResponseType(%q): %v", name, err)
		}
		if rt.String() != name {
			t.Errorf("ParseResponseType(%q).String() = %q", name, rt.String())
		}
	}

	if _, err := ParseResponseType("csv"); err == nil {
		t.Error("expected error for unknown response type")
	}
}

func TestResponseType_OutOfRange(t *testing.T) {
	for _, rt := range []ResponseType{-1, ResponseType(len(ResponseTypeNames))} {
		if got := rt.String(); got != "unknown" {
			t.Errorf("ResponseType(%d).String() = %q, want unknown", int(rt), got)
		}
		if got := rt.Display(); got != "" {
			t.Errorf("ResponseType(%d).Display() = %q, want empty", int(rt), got)
		}
	}
}
