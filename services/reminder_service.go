// services/reminder_service.go
package services

import (
	"log"
	"os"
	"strings"
	"time"

	"detailpro-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Customers whose last completed detail is older than this get a service-due
// reminder, at most once per cooldown window.
const (
	serviceDueAfter  = 90 * 24 * time.Hour
	reminderCooldown = 30 * 24 * time.Hour
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendDailyReminders)

	c.Start()
	log.Println("Reminder scheduler started")
}

func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	var shops []models.Shop
	if err := s.db.Find(&shops, "service_due_reminders = ?", true).Error; err != nil {
		log.Printf("Failed to fetch shops: %v", err)
		return
	}

	for _, shop := range shops {
		s.ProcessShopReminders(shop.ID)
	}

	log.Println("Daily reminder processing completed")
}

func (s *ReminderService) ProcessShopReminders(shopID uuid.UUID) {
	customers, err := s.getServiceDueCustomers(shopID)
	if err != nil {
		log.Printf("Shop %s: Failed to get service-due customers: %v", shopID, err)
		return
	}
	s.sendReminders(shopID, customers)
}

func (s *ReminderService) getServiceDueCustomers(shopID uuid.UUID) ([]models.Customer, error) {
	dueBefore := time.Now().Add(-serviceDueAfter)
	cooldownStart := time.Now().Add(-reminderCooldown)

	// Skip anyone already reminded within the cooldown window.
	query := `
		SELECT * FROM customers c
		WHERE c.shop_id = ?
		AND c.is_active = true
		AND c.deleted_at IS NULL
		AND c.last_completed_at IS NOT NULL
		AND c.last_completed_at <= ?
		AND NOT EXISTS (
			SELECT 1 FROM reminder_logs rl
			WHERE rl.customer_id = c.id
			AND rl.type = 'service_due'
			AND rl.status = 'sent'
			AND rl.sent_at >= ?
		)
	`

	var customers []models.Customer
	err := s.db.Raw(query, shopID, dueBefore, cooldownStart).Scan(&customers).Error
	return customers, err
}

func (s *ReminderService) sendReminders(shopID uuid.UUID, customers []models.Customer) {
	var template models.ReminderTemplate
	if err := s.db.Where("shop_id = ? AND type = ? AND is_active = true", shopID, "service_due").
		First(&template).Error; err != nil {
		log.Printf("Shop %s: No active service_due template: %v", shopID, err)
		return
	}

	for _, customer := range customers {
		message := strings.ReplaceAll(template.Message, "[CustomerName]", customer.Name)

		// Prefer WhatsApp when the number normalized to E.164.
		channel := "sms"
		to := customer.Phone
		if customer.PhoneE164 != "" {
			to = "whatsapp:" + customer.PhoneE164
			channel = "whatsapp"
		}

		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetBody(message)

		if channel == "whatsapp" {
			params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
		} else {
			params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
		}

		resp, err := s.client.Api.CreateMessage(params)
		status := "sent"
		errorMsg := ""

		if err != nil {
			log.Printf("Failed to send reminder to %s: %v", customer.Phone, err)
			status = "failed"
			errorMsg = err.Error()
		} else if resp.Sid != nil {
			log.Printf("Reminder sent to %s, SID: %s", customer.Phone, *resp.Sid)
		} else {
			log.Printf("Reminder sent to %s, but no SID returned", customer.Phone)
		}

		reminderLog := models.ReminderLog{
			ShopID:       shopID,
			CustomerID:   customer.ID,
			TemplateID:   template.ID,
			Type:         "service_due",
			Message:      message,
			Status:       status,
			ErrorMessage: errorMsg,
			Channel:      channel,
			SentAt:       time.Now(),
		}

		if err := s.db.Create(&reminderLog).Error; err != nil {
			log.Printf("Failed to log reminder for customer %s: %v", customer.ID, err)
		}
	}
}
