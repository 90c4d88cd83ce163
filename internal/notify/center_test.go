package notify

import (
	"testing"
	"time"
)

func TestPushAndDismiss(t *testing.T) {
	c := NewCenter(time.Minute, time.Minute)

	n := c.Push("user-1", TypeSuccess, "saved")
	if n.ID == "" {
		t.Fatal("expected a notification ID")
	}

	active := c.Active("user-1")
	if len(active) != 1 || active[0].Message != "saved" {
		t.Fatalf("unexpected active list: %v", active)
	}
	if len(c.Active("user-2")) != 0 {
		t.Error("notification leaked to another user")
	}

	c.Dismiss("user-1", n.ID)
	if len(c.Active("user-1")) != 0 {
		t.Error("expected notification gone after dismiss")
	}

	// Dismissing again is a no-op.
	c.Dismiss("user-1", n.ID)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	c := NewCenter(time.Minute, time.Minute)

	events, cancel := c.Subscribe("user-1")
	defer cancel()

	c.Push("user-1", TypeInfo, "hello")
	c.PushStatus("user-1", "saving")
	c.Push("user-2", TypeInfo, "other user")

	ev := <-events
	if ev.Kind != "notification" || ev.Notification == nil || ev.Notification.Message != "hello" {
		t.Fatalf("unexpected first event: %+v", ev)
	}

	ev = <-events
	if ev.Kind != "save_status" || ev.SaveStatus != "saving" {
		t.Fatalf("unexpected second event: %+v", ev)
	}

	select {
	case ev := <-events:
		t.Fatalf("received another user's event: %+v", ev)
	default:
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	c := NewCenter(time.Minute, time.Minute)

	events, cancel := c.Subscribe("user-1")
	cancel()

	c.Push("user-1", TypeInfo, "late")

	select {
	case ev := <-events:
		t.Fatalf("received event after cancel: %+v", ev)
	default:
	}
}

func TestSweepDismissesExpired(t *testing.T) {
	c := NewCenter(10*time.Millisecond, time.Minute)

	events, cancel := c.Subscribe("user-1")
	defer cancel()

	n := c.Push("user-1", TypeWarning, "old news")
	<-events // drain the push event

	time.Sleep(20 * time.Millisecond)
	c.sweep()

	if len(c.Active("user-1")) != 0 {
		t.Error("expected expired notification to be swept")
	}

	ev := <-events
	if ev.Kind != "dismiss" || ev.ID != n.ID {
		t.Fatalf("expected dismiss event for %s, got %+v", n.ID, ev)
	}
}
