package lease

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"hiero-solo/pkg/k8s/client"
)

func newTestLock(t *testing.T, clientset kubernetes.Interface, identity string) *Lock {
	t.Helper()
	l, err := New(Config{
		Namespace:     "solo",
		Identity:      identity,
		Duration:      30 * time.Second,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	}, client.NewFromClientset(clientset, "kind-a", "solo"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return l
}

func TestNew_Validation(t *testing.T) {
	c := client.NewFromClientset(k8sfake.NewSimpleClientset(), "kind-a", "solo")

	_, err := New(Config{Namespace: "solo"}, c, nil)
	assert.Error(t, err)
	_, err = New(Config{Identity: "a"}, c, nil)
	assert.Error(t, err)
	_, err = New(Config{Identity: "a", Namespace: "solo"}, nil, nil)
	assert.Error(t, err)

	l, err := New(Config{Identity: "a", Namespace: "solo"}, c, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, l.config.Name)
}

func TestNewHolderIdentity(t *testing.T) {
	id := NewHolderIdentity("alice", "ws-1")
	assert.True(t, strings.HasPrefix(id, "alice@ws-1/"))
	assert.NotEqual(t, id, NewHolderIdentity("alice", "ws-1"))
}

func TestAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	clientset := k8sfake.NewSimpleClientset()
	l := newTestLock(t, clientset, "alice@ws-1/1")

	require.NoError(t, l.Acquire(ctx))
	assert.True(t, l.IsHeld())

	lease, err := clientset.CoordinationV1().Leases("solo").Get(ctx, DefaultName, metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, lease.Spec.HolderIdentity)
	assert.Equal(t, "alice@ws-1/1", *lease.Spec.HolderIdentity)

	holder, err := l.Holder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@ws-1/1", holder)

	require.NoError(t, l.Acquire(ctx), "re-acquiring an owned lease succeeds")
	require.NoError(t, l.Renew(ctx))

	require.NoError(t, l.Release(ctx))
	assert.False(t, l.IsHeld())
	holder, err = l.Holder(ctx)
	require.NoError(t, err)
	assert.Empty(t, holder)
}

func TestAcquire_HeldByAnotherHolder(t *testing.T) {
	ctx := context.Background()
	clientset := k8sfake.NewSimpleClientset()
	alice := newTestLock(t, clientset, "alice@ws-1/1")
	bob := newTestLock(t, clientset, "bob@ws-2/2")

	require.NoError(t, alice.Acquire(ctx))

	err := bob.Acquire(ctx)
	var acquireErr *AcquireError
	require.ErrorAs(t, err, &acquireErr)
	assert.Equal(t, 3, acquireErr.Attempts)
	assert.ErrorIs(t, err, ErrLeaseHeld)

	var held *LeaseHeldError
	require.ErrorAs(t, err, &held)
	assert.Equal(t, "alice@ws-1/1", held.Holder)
	assert.False(t, bob.IsHeld())

	require.NoError(t, bob.Release(ctx), "releasing someone else's lease is a no-op")
	holder, err := alice.Holder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@ws-1/1", holder)

	require.NoError(t, alice.Release(ctx))
	require.NoError(t, bob.Acquire(ctx))
	assert.True(t, bob.IsHeld())
}

func TestAcquire_TakesOverExpiredLease(t *testing.T) {
	ctx := context.Background()
	clientset := k8sfake.NewSimpleClientset()
	alice := newTestLock(t, clientset, "alice@ws-1/1")
	bob := newTestLock(t, clientset, "bob@ws-2/2")

	require.NoError(t, alice.Acquire(ctx))
	bob.now = func() time.Time { return time.Now().Add(time.Hour) }

	require.NoError(t, bob.Acquire(ctx))

	lease, err := clientset.CoordinationV1().Leases("solo").Get(ctx, DefaultName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "bob@ws-2/2", *lease.Spec.HolderIdentity)
	require.NotNil(t, lease.Spec.LeaseTransitions)
	assert.Equal(t, int32(1), *lease.Spec.LeaseTransitions)

	err = alice.Renew(ctx)
	assert.ErrorIs(t, err, ErrLeaseHeld)
	assert.False(t, alice.IsHeld())
}

func TestAcquire_ContextCancelled(t *testing.T) {
	clientset := k8sfake.NewSimpleClientset()
	alice := newTestLock(t, clientset, "alice@ws-1/1")
	require.NoError(t, alice.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bob := newTestLock(t, clientset, "bob@ws-2/2")
	assert.Error(t, bob.Acquire(ctx))
}
