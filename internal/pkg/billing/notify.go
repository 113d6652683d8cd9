package billing

import (
	"fmt"
	"log"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/mail"
)

// notifyStatusChange emails the owner when a subscription degrades. Mail is
// best effort and never fails the billing operation that triggered it.
func (s *Service) notifyStatusChange(sub *models.Subscription) {
	var subject, body string
	switch sub.Status {
	case models.SubscriptionStatusOverdue:
		subject = "Problem with your GameHaven subscription payment"
		body = fmt.Sprintf("Hi,\n\nthe latest payment for your %s subscription was declined (attempt %d of %d). Please check your payment method to keep your access.\n\nYour GameHaven Team",
			sub.Plan, sub.FailedPaymentCount, FailedPaymentThreshold)
	case models.SubscriptionStatusExpired:
		subject = "Your GameHaven subscription has expired"
		body = fmt.Sprintf("Hi,\n\nyour %s subscription expired after repeated failed payments. You can resubscribe at any time from your account page.\n\nYour GameHaven Team", sub.Plan)
	case models.SubscriptionStatusCancelled:
		subject = "Your GameHaven subscription has ended"
		body = fmt.Sprintf("Hi,\n\nyour %s subscription has ended. Thanks for playing with us, you are welcome back any time.\n\nYour GameHaven Team", sub.Plan)
	default:
		return
	}

	email, err := s.repo.GetUserEmail(sub.UserID)
	if err != nil {
		log.Printf("[Billing] Cannot notify user %d about %s subscription: %v", sub.UserID, sub.Status, err)
		return
	}
	if err := mail.SendMail(email, subject, body); err != nil {
		log.Printf("[Billing] Failed to send %s notice to user %d: %v", sub.Status, sub.UserID, err)
	}
}
