package newsletter

import (
	"context"
	"errors"
	"testing"
)

type memRepo struct {
	emails map[string]bool
	err    error
}

func (m *memRepo) Add(_ context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.emails == nil {
		m.emails = map[string]bool{}
	}
	if m.emails[email] {
		return false, nil
	}
	m.emails[email] = true
	return true, nil
}

func TestSubscribe_Empty(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	status, err := svc.Subscribe(context.Background(), "   ")
	if err != nil || status != StatusIdle {
		t.Errorf("empty email: status=%s err=%v", status, err)
	}
	if len(repo.emails) != 0 {
		t.Error("empty email should not be stored")
	}
}

func TestSubscribe_Invalid(t *testing.T) {
	svc := NewService(&memRepo{})
	for _, in := range []string{"not-an-email", "a@b", "@example.com"} {
		status, err := svc.Subscribe(context.Background(), in)
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("%q: expected ErrInvalidEmail, got %v", in, err)
		}
		if status != StatusInvalid {
			t.Errorf("%q: status %s", in, status)
		}
	}
}

func TestSubscribe_NormalizesAndDedups(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	for _, in := range []string{"Reader@Example.com", "reader@example.com", "Ann Reader <READER@example.com>"} {
		status, err := svc.Subscribe(context.Background(), in)
		if err != nil || status != StatusSubscribed {
			t.Fatalf("%q: status=%s err=%v", in, status, err)
		}
	}
	if len(repo.emails) != 1 || !repo.emails["reader@example.com"] {
		t.Errorf("expected one normalized email, got %v", repo.emails)
	}
}

func TestSubscribe_RepoError(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("disk full")})
	if _, err := svc.Subscribe(context.Background(), "a@example.com"); err == nil {
		t.Fatal("expected repository error")
	}
}

func TestStatusString(t *testing.T) {
	if StatusSubscribed.String() != "success" || StatusIdle.String() != "idle" || Status(9).String() != "unknown" {
		t.Error("unexpected status names")
	}
}
