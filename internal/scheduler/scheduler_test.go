package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubMaterializer struct {
	calls int
	count int
	err   error
}

func (s *stubMaterializer) MaterializeScheduled(ctx context.Context) (int, error) {
	s.calls++
	return s.count, s.err
}

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		s := New(&stubMaterializer{}, zap.NewNop())

		assert.NotNil(t, s)
		assert.NotNil(t, s.cron)
	})

	t.Run("nil materializer panics", func(t *testing.T) {
		assert.Panics(t, func() {
			New(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		s := New(&stubMaterializer{}, nil)

		assert.NotNil(t, s.logger)
	})
}

func TestStart(t *testing.T) {
	t.Run("valid spec", func(t *testing.T) {
		s := New(&stubMaterializer{}, zap.NewNop())

		err := s.Start("@hourly")

		assert.NoError(t, err)
		s.Stop()
	})

	t.Run("invalid spec", func(t *testing.T) {
		s := New(&stubMaterializer{}, zap.NewNop())

		err := s.Start("not a cron spec")

		assert.Error(t, err)
	})
}

func TestRunMaterialize(t *testing.T) {
	t.Run("invokes the materializer once", func(t *testing.T) {
		stub := &stubMaterializer{count: 2}
		s := New(stub, zap.NewNop())

		s.runMaterialize()

		assert.Equal(t, 1, stub.calls)
	})

	t.Run("materializer errors are swallowed", func(t *testing.T) {
		stub := &stubMaterializer{err: errors.New("db down")}
		s := New(stub, zap.NewNop())

		assert.NotPanics(t, func() {
			s.runMaterialize()
		})
		assert.Equal(t, 1, stub.calls)
	})
}
