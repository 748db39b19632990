package commreg

import (
	"testing"
	"time"

	"cellhv/cell"
	"cellhv/cellname"
	"cellhv/defs"
)

func TestSendAndWaitPassiveAutoApproves(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest"), Flags: defs.PASSIVE_COMMREG}
	if !SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, nil) {
		t.Fatal("passive cell must auto-approve")
	}
}

func TestSendAndWaitRequestApproved(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest")}
	c.Comm.SetState(defs.RUNNING)
	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Comm.ReplyFromCell.Store(uint32(defs.REQUEST_APPROVED))
	}()
	if !SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, nil) {
		t.Fatal("expected approval")
	}
}

func TestSendAndWaitRequestDenied(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest")}
	c.Comm.SetState(defs.RUNNING)
	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Comm.ReplyFromCell.Store(uint32(defs.REQUEST_DENIED))
	}()
	if SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, nil) {
		t.Fatal("expected denial")
	}
}

func TestSendAndWaitInformationReceived(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest")}
	c.Comm.SetState(defs.RUNNING)
	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Comm.ReplyFromCell.Store(uint32(defs.RECEIVED))
	}()
	if !SendAndWait(c, defs.RECONFIG_COMPLETED, defs.INFORMATION, nil) {
		t.Fatal("expected received")
	}
}

func TestSendAndWaitShutdownStateShortCircuits(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest")}
	c.Comm.SetState(defs.SHUT_DOWN)
	if !SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, nil) {
		t.Fatal("a cell already shut down must short-circuit to true")
	}
}

func TestSendAndWaitObserverCalled(t *testing.T) {
	c := &cell.Cell{ID: 1, Name: cellname.New("guest")}
	c.Comm.SetState(defs.RUNNING)
	var calls int
	go func() {
		time.Sleep(30 * time.Millisecond)
		c.Comm.ReplyFromCell.Store(uint32(defs.REQUEST_APPROVED))
	}()
	SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, func(time.Duration) { calls++ })
	if calls == 0 {
		t.Fatal("expected the stall observer to fire at least once")
	}
}
