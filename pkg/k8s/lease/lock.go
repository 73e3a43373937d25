// Package lease serializes writers of a deployment's remote config with a
// coordination.k8s.io/v1 Lease in the deployment namespace.
package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"hiero-solo/pkg/k8s/client"
)

// DefaultName is the name of the Lease guarding a deployment.
const DefaultName = "solo-lease"

// Config contains configuration for a Lock.
type Config struct {
	// Name is the name of the Lease resource
	Name string

	// Namespace is the deployment namespace holding the Lease
	Namespace string

	// Identity is the holder identity written to the Lease, see NewHolderIdentity
	Identity string

	// Duration is how long the Lease stays valid without renewal
	Duration time.Duration

	// MaxRetries bounds the acquisition attempts after the first one
	MaxRetries uint64

	// RetryInterval is the initial backoff between acquisition attempts
	RetryInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Duration <= 0 {
		c.Duration = 20 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 10
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
	return c
}

// NewHolderIdentity returns a unique holder identity for an operator,
// formatted as <user>@<host>/<uuid>.
func NewHolderIdentity(user, host string) string {
	return fmt.Sprintf("%s@%s/%s", user, host, uuid.NewString())
}

// Lock is an exclusive lock backed by a Kubernetes Lease. An expired Lease
// may be taken over by any holder.
type Lock struct {
	config Config
	lock   *resourcelock.LeaseLock
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	held bool
}

// New creates a lock. Nothing is written until Acquire is called.
func New(config Config, c *client.Client, logger *slog.Logger) (*Lock, error) {
	config = config.withDefaults()

	if config.Identity == "" {
		return nil, fmt.Errorf("identity cannot be empty")
	}

	if config.Namespace == "" {
		return nil, fmt.Errorf("lease namespace cannot be empty")
	}

	if c == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Lock{
		config: config,
		lock: &resourcelock.LeaseLock{
			LeaseMeta: metav1.ObjectMeta{
				Name:      config.Name,
				Namespace: config.Namespace,
			},
			Client: c.Clientset().CoordinationV1(),
			LockConfig: resourcelock.ResourceLockConfig{
				Identity: config.Identity,
			},
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

// Identity returns the holder identity of this lock.
func (l *Lock) Identity() string {
	return l.config.Identity
}

// IsHeld reports whether this lock holds the Lease.
func (l *Lock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Acquire takes the Lease, retrying with exponential backoff while another
// holder owns it.
func (l *Lock) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.config.RetryInterval
	policy.MaxElapsedTime = 0

	attempts := 0
	operation := func() error {
		attempts++
		err := l.tryAcquire(ctx)
		if err == nil || errors.Is(err, ErrLeaseHeld) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, l.config.MaxRetries), ctx))
	if err != nil {
		return &AcquireError{Name: l.config.Name, Namespace: l.config.Namespace, Attempts: attempts, Err: err}
	}

	l.held = true
	l.logger.Info("Lease acquired",
		"lease", l.config.Name,
		"namespace", l.config.Namespace,
		"identity", l.config.Identity,
		"attempts", attempts)
	return nil
}

func (l *Lock) tryAcquire(ctx context.Context) error {
	now := metav1.NewTime(l.now())
	record := resourcelock.LeaderElectionRecord{
		HolderIdentity:       l.config.Identity,
		LeaseDurationSeconds: int(l.config.Duration / time.Second),
		AcquireTime:          now,
		RenewTime:            now,
	}

	current, _, err := l.lock.Get(ctx)
	if err != nil {
		if !client.IsNotFound(err) {
			return err
		}
		return l.lock.Create(ctx, record)
	}

	switch {
	case current.HolderIdentity == l.config.Identity:
		record.AcquireTime = current.AcquireTime
		record.LeaderTransitions = current.LeaderTransitions
	case current.HolderIdentity == "" || l.expired(current):
		record.LeaderTransitions = current.LeaderTransitions + 1
		l.logger.Debug("Taking over lease",
			"lease", l.config.Name,
			"previous_holder", current.HolderIdentity)
	default:
		return &LeaseHeldError{Holder: current.HolderIdentity}
	}
	return l.lock.Update(ctx, record)
}

func (l *Lock) expired(record *resourcelock.LeaderElectionRecord) bool {
	validUntil := record.RenewTime.Add(time.Duration(record.LeaseDurationSeconds) * time.Second)
	return l.now().After(validUntil)
}

// Renew extends a held Lease.
func (l *Lock) Renew(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, _, err := l.lock.Get(ctx)
	if err != nil {
		return err
	}
	if current.HolderIdentity != l.config.Identity {
		l.held = false
		return &LeaseHeldError{Holder: current.HolderIdentity}
	}

	current.RenewTime = metav1.NewTime(l.now())
	return l.lock.Update(ctx, *current)
}

// Release gives up the Lease. Releasing a Lease held by someone else, or
// one that no longer exists, is a no-op.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	current, _, err := l.lock.Get(ctx)
	if err != nil {
		if client.IsNotFound(err) {
			return nil
		}
		return err
	}
	if current.HolderIdentity != l.config.Identity {
		return nil
	}

	now := metav1.NewTime(l.now())
	err = l.lock.Update(ctx, resourcelock.LeaderElectionRecord{
		LeaseDurationSeconds: 1,
		AcquireTime:          now,
		RenewTime:            now,
		LeaderTransitions:    current.LeaderTransitions,
	})
	if err != nil {
		return err
	}

	l.logger.Info("Lease released", "lease", l.config.Name, "namespace", l.config.Namespace)
	return nil
}

// Holder returns the identity currently holding the Lease, or an empty
// string when the Lease is free.
func (l *Lock) Holder(ctx context.Context) (string, error) {
	current, _, err := l.lock.Get(ctx)
	if err != nil {
		if client.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if l.expired(current) {
		return "", nil
	}
	return current.HolderIdentity, nil
}
