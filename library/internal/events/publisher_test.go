package events

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/model"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()
	occurred := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	event := model.Event{
		Type:       model.EventLoanReturned,
		OccurredAt: occurred,
		Payload:    map[string]any{"fine": 15000},
	}

	tests := []struct {
		name    string
		expect  func(p *mocks.SyncProducer)
		wantErr error
	}{
		{
			name: "ok",
			expect: func(p *mocks.SyncProducer) {
				p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
					res := gjson.GetManyBytes(val, "type", "occurredAt", "payload.fine")
					if res[0].String() != "loan.returned" || res[1].String() != "2024-03-04T10:00:00Z" || res[2].Int() != 15000 {
						return errors.Errorf("unexpected event %s", val)
					}
					return nil
				})
			},
		},
		{
			name: "err. broker down",
			expect: func(p *mocks.SyncProducer) {
				p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
			},
			wantErr: sarama.ErrOutOfBrokers,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			producer := mocks.NewSyncProducer(t, nil)
			tt.expect(producer)
			p := NewPublisher(producer, "library-events", zap.NewNop())

			err := p.Publish(context.Background(), event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorContains(t, err, "send loan.returned")
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, p.Close())
		})
	}
}

func TestPublisher_CancelledContext(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	p := NewPublisher(producer, "library-events", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, p.Publish(ctx, model.Event{Type: model.EventLoanCreated}), context.Canceled)
	require.NoError(t, p.Close())
}
