package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryConnect(t *testing.T) {
	dialErr := fmt.Errorf("ping postgres: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")})
	authErr := fmt.Errorf("ping postgres: %w", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"})

	tests := []struct {
		name      string
		errs      []error // returned by successive attempts; nil ends them
		wantCalls int
		wantErr   error
	}{
		{"first try", []error{nil}, 1, nil},
		{"network failures then success", []error{dialErr, dialErr, nil}, 3, nil},
		{"server error is not retried", []error{authErr, nil}, 1, authErr},
		{"gives up after max tries", []error{dialErr, dialErr, dialErr, dialErr, dialErr, dialErr}, 5, dialErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := retryConnect(context.Background(), func(context.Context) (string, error) {
				err := tt.errs[calls]
				calls++
				if err != nil {
					return "", err
				}
				return "pool", nil
			}, backoff.WithBackOff(&backoff.ZeroBackOff{}))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pool", got)
		})
	}
}

func TestRetryConnectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retryConnect(ctx, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}, backoff.WithBackOff(&backoff.ZeroBackOff{}))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
