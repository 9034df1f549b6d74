// Package payment читает статус платежа из Omise. Списания не создаются
// и не подтверждаются: хранятся только ссылки, полученные снаружи.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/Leganyst/lesson-booking/internal/model"
)

const defaultTimeout = 10 * time.Second

var ErrEmptyReference = errors.New("payment reference is empty")

// Error оборачивает неудачный запрос к провайдеру.
type Error struct {
	Op  string
	Ref string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment %s %s: %v", e.Op, e.Ref, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type chargeRetriever interface {
	RetrieveCharge(chargeID string) (*omise.Charge, error)
}

type omiseCharges struct {
	client *omise.Client
}

func (o omiseCharges) RetrieveCharge(chargeID string) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := o.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, err
	}
	return ch, nil
}

type OmiseGateway struct {
	charges chargeRetriever
	timeout time.Duration
}

func NewOmiseGateway(publicKey, secretKey string, timeout time.Duration) (*OmiseGateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return newGateway(omiseCharges{client: client}, timeout), nil
}

func newGateway(charges chargeRetriever, timeout time.Duration) *OmiseGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OmiseGateway{charges: charges, timeout: timeout}
}

type chargeResult struct {
	charge *omise.Charge
	err    error
}

// GetPaymentIntent возвращает статус списания в терминах payment_status.
// На расписание он не влияет.
func (g *OmiseGateway) GetPaymentIntent(ctx context.Context, ref string) (model.PaymentStatus, error) {
	const op = "get_payment_intent"
	if ref == "" {
		return "", &Error{Op: op, Err: ErrEmptyReference}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// omise-go не умеет context, по таймауту вызов просто бросаем.
	done := make(chan chargeResult, 1)
	go func() {
		ch, err := g.charges.RetrieveCharge(ref)
		done <- chargeResult{charge: ch, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", &Error{Op: op, Ref: ref, Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			return "", &Error{Op: op, Ref: ref, Err: res.err}
		}
		return MapChargeStatus(string(res.charge.Status)), nil
	}
}

// MapChargeStatus переводит статус списания Omise.
func MapChargeStatus(status string) model.PaymentStatus {
	switch status {
	case "successful":
		return model.PaymentStatusPaid
	case "failed", "expired":
		return model.PaymentStatusFailed
	case "reversed", "refunded":
		return model.PaymentStatusRefunded
	default:
		// pending, awaiting_authorize и прочие промежуточные
		return model.PaymentStatusPending
	}
}
