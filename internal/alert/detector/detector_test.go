package detector

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"aidtrack/internal/alert"
	"aidtrack/internal/delivery"
	"aidtrack/internal/platform/config"
	"aidtrack/internal/platform/logger"
	"aidtrack/internal/platform/metrics"
	id "aidtrack/pkg/domain"
)

var testMetrics = metrics.New()

type DetectorSuite struct {
	suite.Suite
	deliveries *delivery.InMemoryStore
	alerts     *alert.InMemoryStore
	detector   *Detector

	beneficiary id.BeneficiaryID
	aidType     id.AidTypeID
	operator    id.UserID
	day0        time.Time
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorSuite))
}

func (s *DetectorSuite) SetupTest() {
	s.deliveries = delivery.NewInMemoryStore()
	s.alerts = alert.NewInMemoryStore()
	s.detector = New(s.deliveries, s.alerts, logger.New(), testMetrics, config.DefaultCooldownDays)

	s.beneficiary = id.BeneficiaryID(uuid.New())
	s.aidType = id.AidTypeID(uuid.New())
	s.operator = id.UserID(uuid.New())
	s.day0 = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
}

func (s *DetectorSuite) newDelivery(at time.Time) *delivery.Delivery {
	d := &delivery.Delivery{
		ID:            id.DeliveryID(uuid.New()),
		BeneficiaryID: s.beneficiary,
		AidTypeID:     s.aidType,
		Quantity:      1,
		OperatorID:    s.operator,
		Municipality:  "San Rafael",
		DeliveredAt:   at,
		ReceiptNumber: delivery.NewReceiptNumber(at),
		CreatedAt:     at,
	}
	s.Require().NoError(s.deliveries.Create(context.Background(), d))
	return d
}

func (s *DetectorSuite) TestFirstDeliveryRaisesNoAlert() {
	first := s.newDelivery(s.day0)

	raised := s.detector.CheckAndFlag(context.Background(), first)
	s.Nil(raised)

	pending, err := s.alerts.List(context.Background(), alert.StatusPending)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *DetectorSuite) TestRepeatInsideWindowRaisesPendingAlert() {
	s.newDelivery(s.day0)
	second := s.newDelivery(s.day0.AddDate(0, 0, 10))

	raised := s.detector.CheckAndFlag(context.Background(), second)
	s.Require().NotNil(raised)
	s.Equal(alert.StatusPending, raised.Status)
	s.Equal(10, raised.DaysSinceLast)
	s.Equal(second.ID, raised.DeliveryID)
	s.Equal(second.DeliveredAt, raised.TriggeredAt)

	// Exactly one alert persisted.
	pending, err := s.alerts.List(context.Background(), alert.StatusPending)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *DetectorSuite) TestRepeatOutsideWindowRaisesNoAlert() {
	s.newDelivery(s.day0.AddDate(0, 0, 10))
	third := s.newDelivery(s.day0.AddDate(0, 0, 55)) // 45 days after day 10

	raised := s.detector.CheckAndFlag(context.Background(), third)
	s.Nil(raised)
}

func (s *DetectorSuite) TestDaysSinceIsFloored() {
	s.newDelivery(s.day0)
	// 7 days and 20 hours later floors to 7.
	second := s.newDelivery(s.day0.AddDate(0, 0, 7).Add(20 * time.Hour))

	raised := s.detector.CheckAndFlag(context.Background(), second)
	s.Require().NotNil(raised)
	s.Equal(7, raised.DaysSinceLast)
}

func (s *DetectorSuite) TestDifferentAidTypeRaisesNoAlert() {
	s.newDelivery(s.day0)

	other := &delivery.Delivery{
		ID:            id.DeliveryID(uuid.New()),
		BeneficiaryID: s.beneficiary,
		AidTypeID:     id.AidTypeID(uuid.New()),
		Quantity:      1,
		OperatorID:    s.operator,
		DeliveredAt:   s.day0.AddDate(0, 0, 5),
	}
	s.Require().NoError(s.deliveries.Create(context.Background(), other))

	raised := s.detector.CheckAndFlag(context.Background(), other)
	s.Nil(raised)
}

func (s *DetectorSuite) TestMostRecentPriorDeliveryWins() {
	s.newDelivery(s.day0)
	s.newDelivery(s.day0.AddDate(0, 0, 12))
	third := s.newDelivery(s.day0.AddDate(0, 0, 20))

	raised := s.detector.CheckAndFlag(context.Background(), third)
	s.Require().NotNil(raised)
	s.Equal(8, raised.DaysSinceLast) // relative to day 12, not day 0
}
