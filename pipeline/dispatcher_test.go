package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

func TestDispatcherRunsJob(t *testing.T) {
	store := newMemJobStore(testEnrollment(t, 1))
	worker := &Worker{
		Templates: &fakeTemplateSource{defaultPkg: testPackage(t)},
		Jobs:      store,
		Filler:    passthroughFiller{},
	}

	d := NewDispatcher(worker, 4, 100*time.Millisecond, 30*time.Second)
	d.Start(1)

	if err := d.Dispatch(Job{EnrollmentID: 1, ClientIP: "203.0.113.9"}); err != nil {
		t.Fatalf("Failed to dispatch: %v", err)
	}
	d.Stop()

	e, _ := store.Get(context.Background(), 1)
	if e.PackageStatus != model.PackageStatusCompleted {
		t.Errorf("Expected completed status, got %q (error %q)", e.PackageStatus, e.PackageError)
	}
}

func TestDispatchTimeoutWhenFull(t *testing.T) {
	// No workers started: the queue fills and the next dispatch times out
	d := NewDispatcher(&Worker{}, 1, 20*time.Millisecond, time.Second)

	if err := d.Dispatch(Job{EnrollmentID: 1}); err != nil {
		t.Fatalf("First dispatch should fill the queue: %v", err)
	}
	if err := d.Dispatch(Job{EnrollmentID: 2}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestClaimIdempotence(t *testing.T) {
	store := newMemJobStore(testEnrollment(t, 5))
	// testEnrollment starts in processing; reset to empty for the claim
	store.enrollments[5].PackageStatus = model.PackageStatusEmpty

	won, err := store.ClaimForProcessing(context.Background(), 5)
	if err != nil || !won {
		t.Fatalf("Expected first claim to win, got won=%v err=%v", won, err)
	}
	won, err = store.ClaimForProcessing(context.Background(), 5)
	if err != nil {
		t.Fatalf("Second claim errored: %v", err)
	}
	if won {
		t.Error("Second claim must lose while the job is processing")
	}

	// Completed records can never be reclaimed
	store.enrollments[5].PackageStatus = model.PackageStatusCompleted
	if won, _ := store.ClaimForProcessing(context.Background(), 5); won {
		t.Error("Completed record must not be reclaimed")
	}

	// Failed records may be reclaimed by an explicit re-trigger
	store.enrollments[5].PackageStatus = model.PackageStatusFailed
	if won, _ := store.ClaimForProcessing(context.Background(), 5); !won {
		t.Error("Expected failed record to be claimable on re-trigger")
	}
}
