package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

func TestCallbackReporterDeliversEvents(t *testing.T) {
	var updates []Update
	r := NewCallbackReporter(func(u Update) {
		updates = append(updates, u)
	})

	entry := domain.SyncEntry{
		AggregatePath: "/site/index.html",
		FsPath:        "/target/site/index.html",
		Op:            domain.OpMaterialize,
		Change:        domain.ChangeAdded,
	}

	r.RootStart("site")
	r.Mutation(entry)
	r.RootDone("site", domain.SyncStats{Materialized: 1, Added: 1}, nil)

	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].Type != UpdateRootStart || updates[0].Root != "site" {
		t.Errorf("unexpected first update: %+v", updates[0])
	}
	if updates[1].Type != UpdateMutation || updates[1].Entry != entry {
		t.Errorf("unexpected mutation update: %+v", updates[1])
	}
	if updates[1].Root != "site" {
		t.Errorf("mutation update Root = %q, want %q", updates[1].Root, "site")
	}
	if updates[2].Type != UpdateRootDone || updates[2].Stats.Added != 1 {
		t.Errorf("unexpected done update: %+v", updates[2])
	}
}

func TestCallbackReporterNilCallback(t *testing.T) {
	r := NewCallbackReporter(nil)
	r.RootStart("site")
	r.Mutation(domain.SyncEntry{})
	r.RootDone("site", domain.SyncStats{}, nil)
}

func TestConsoleReporterOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.RootStart("site")
	r.Mutation(domain.SyncEntry{
		FsPath: "/target/site/index.html",
		Op:     domain.OpMaterialize,
		Change: domain.ChangeAdded,
	})
	r.Mutation(domain.SyncEntry{
		FsPath: "/target/site/old.html",
		Op:     domain.OpDelete,
	})
	r.RootDone("site", domain.SyncStats{Materialized: 1, Added: 1, Deleted: 1}, nil)

	out := buf.String()
	for _, want := range []string{
		"syncing root site",
		"A /target/site/index.html",
		"D /target/site/old.html",
		"root site: 1 added, 0 updated, 1 deleted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporterFailure(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.RootDone("site", domain.SyncStats{}, errors.New("target unreachable"))

	if !strings.Contains(buf.String(), "root site failed: target unreachable") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestMarker(t *testing.T) {
	cases := []struct {
		entry domain.SyncEntry
		want  string
	}{
		{domain.SyncEntry{Op: domain.OpMaterialize, Change: domain.ChangeAdded}, "A"},
		{domain.SyncEntry{Op: domain.OpMaterialize, Change: domain.ChangeUpdated}, "U"},
		{domain.SyncEntry{Op: domain.OpDelete}, "D"},
	}
	for _, c := range cases {
		if got := Marker(c.entry); got != c.want {
			t.Errorf("Marker(%+v) = %q, want %q", c.entry, got, c.want)
		}
	}
}
