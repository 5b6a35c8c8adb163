package sleighctx_test

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/sleighctx"
)

func TestPointCommitVisibleOnlyAtScheduledAddress(t *testing.T) {
	db := sleighctx.NewDatabase(1)
	db.ScheduleCommitAt(0x1000, 0, 0xFF, 0x42, false)

	atA := db.BeginDecode(0x1000)
	if got := atA.GetContextBytes(3, 1); got != 0x42 {
		t.Errorf("decode at committed address should see value, got 0x%x", got)
	}
	atA.Publish()

	atNext := db.BeginDecode(0x1004)
	if got := atNext.GetContextBytes(3, 1); got == 0x42 {
		t.Errorf("decode past the committed address should not see the point commit")
	}
}

func TestFlowCommitPersistsAcrossDecodes(t *testing.T) {
	db := sleighctx.NewDatabase(1)
	s := db.BeginDecode(0x1000)
	s.Commit(0, 0xFF, 0x7, true)
	s.Publish()

	later := db.BeginDecode(0x2000)
	if got := later.GetContextBytes(3, 1); got != 0x7 {
		t.Errorf("flow commit should persist to later decodes, got 0x%x", got)
	}
}

func TestDiscardLeavesPersistentStateUnchanged(t *testing.T) {
	db := sleighctx.NewDatabase(1)
	before := db.GetContextBytes(0, 4)

	s := db.BeginDecode(0x1000)
	s.Commit(0, 0xFFFFFFFF, 0xDEADBEEF, true)
	s.Discard()

	after := db.GetContextBytes(0, 4)
	if before != after {
		t.Errorf("discarded scratch must not affect persistent context: before=0x%x after=0x%x", before, after)
	}
}
