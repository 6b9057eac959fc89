package services

import (
	"context"
	"errors"
	"log"

	"github.com/onefin/server/internal/repository"
)

// PaymentService определяет интерфейс сервиса учёта оплат подписки.
// Внешний платёжный шлюз сюда не входит: сервис фиксирует уже
// подтверждённые оплаты и отвечает на вопрос "оплачено ли сегодня".
type PaymentService interface {
	ConfirmPayment(ctx context.Context, userID int64, plan string) error
	IsPaid(ctx context.Context, userID int64) (bool, error)
	PlanPrice(ctx context.Context, userID int64) (string, error)
}

// Цены тарифных планов в CZK.
var planPrices = map[string]string{
	"1": "0",
	"2": "99",
}

// ErrAlreadyPaid возвращается при повторной оплате в тот же день.
var ErrAlreadyPaid = errors.New("оплата за сегодня уже зафиксирована")

// Убедимся, что paymentService удовлетворяет интерфейсу PaymentService.
var _ PaymentService = (*paymentService)(nil)

type paymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
}

// NewPaymentService создает новый экземпляр сервиса оплат.
func NewPaymentService(paymentRepo repository.PaymentRepository, userRepo repository.UserRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, userRepo: userRepo}
}

// ConfirmPayment фиксирует подтверждённую оплату. Не более одной оплаты
// в день на пользователя.
func (s *paymentService) ConfirmPayment(ctx context.Context, userID int64, plan string) error {
	if !knownPlans[plan] {
		return ErrUnknownPlan
	}

	paid, err := s.paymentRepo.HasPaymentToday(ctx, userID)
	if err != nil {
		log.Printf("[PaymentService] Ошибка проверки оплаты пользователя %d: %v", userID, err)
		return errors.New("внутренняя ошибка сервера при проверке оплаты")
	}
	if paid {
		return ErrAlreadyPaid
	}

	if err = s.paymentRepo.RecordPayment(ctx, userID, plan); err != nil {
		log.Printf("[PaymentService] Ошибка записи оплаты пользователя %d: %v", userID, err)
		return errors.New("внутренняя ошибка сервера при записи оплаты")
	}

	log.Printf("[PaymentService] Оплата плана %s пользователя %d зафиксирована", plan, userID)
	return nil
}

// IsPaid сообщает, зафиксирована ли оплата пользователя за сегодня.
func (s *paymentService) IsPaid(ctx context.Context, userID int64) (bool, error) {
	paid, err := s.paymentRepo.HasPaymentToday(ctx, userID)
	if err != nil {
		log.Printf("[PaymentService] Ошибка проверки оплаты пользователя %d: %v", userID, err)
		return false, errors.New("внутренняя ошибка сервера при проверке оплаты")
	}
	return paid, nil
}

// PlanPrice возвращает цену текущего плана пользователя.
func (s *paymentService) PlanPrice(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		log.Printf("[PaymentService] Ошибка поиска пользователя %d: %v", userID, err)
		return "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	price, ok := planPrices[user.Plan]
	if !ok {
		return "", ErrUnknownPlan
	}
	return price, nil
}
