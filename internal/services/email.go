package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"sync"

	"github.com/fscip/fscip-backend/internal/config"
)

// EmailService delivers OTP and welcome mail. Implementations report
// success as a bool so callers can branch without error plumbing; transport
// detail stays in the implementation's own logs.
type EmailService interface {
	SendOTP(email, code string, expiryMinutes int) bool
	SendWelcome(email, fullName string) bool
}

// SMTPEmailService sends mail over SMTP with implicit TLS
type SMTPEmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPEmailService creates a mailer from SMTP configuration
func NewSMTPEmailService(cfg config.SMTPConfig) *SMTPEmailService {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPEmailService{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
	}
}

func (s *SMTPEmailService) SendOTP(email, code string, expiryMinutes int) bool {
	body := fmt.Sprintf("Your verification code is: %s. It will expire in %d minutes.", code, expiryMinutes)
	if err := s.send(email, "Your FSCIP verification code", body); err != nil {
		log.Printf("Failed to send OTP email to %s: %v", email, err)
		return false
	}
	return true
}

func (s *SMTPEmailService) SendWelcome(email, fullName string) bool {
	body := fmt.Sprintf("Welcome to FSCIP, %s! Your account has been successfully activated.", fullName)
	if err := s.send(email, "Welcome to FSCIP", body); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", email, err)
		return false
	}
	return true
}

func (s *SMTPEmailService) send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"\r\n" +
			body,
	)

	serverAddr := s.host + ":" + s.port

	// Implicit TLS for port 465
	tlsConfig := &tls.Config{
		ServerName: s.host,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// SentEmail records a message handled by the mock mailer
type SentEmail struct {
	Email   string
	Type    string // "OTP" or "WELCOME"
	Content string
}

// MockEmailService logs mail instead of sending it. Used when SMTP is not
// configured, and by tests to capture emitted codes.
type MockEmailService struct {
	mu        sync.Mutex
	sent      []SentEmail
	lastOTP   map[string]string
	FailSends bool // when true, SendOTP reports failure
}

// NewMockEmailService creates a mock mailer
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		lastOTP: make(map[string]string),
	}
}

func (m *MockEmailService) SendOTP(email, code string, expiryMinutes int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSends {
		log.Printf("MOCK EMAIL: simulated send failure for %s", email)
		return false
	}

	log.Printf("MOCK EMAIL: OTP for %s is %s (expires in %d minutes)", email, code, expiryMinutes)
	m.sent = append(m.sent, SentEmail{
		Email:   email,
		Type:    "OTP",
		Content: fmt.Sprintf("Your verification code is: %s. It will expire in %d minutes.", code, expiryMinutes),
	})
	m.lastOTP[email] = code
	return true
}

func (m *MockEmailService) SendWelcome(email, fullName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSends {
		return false
	}

	log.Printf("MOCK EMAIL: welcome mail for %s (%s)", email, fullName)
	m.sent = append(m.sent, SentEmail{
		Email:   email,
		Type:    "WELCOME",
		Content: fmt.Sprintf("Welcome to FSCIP, %s!", fullName),
	})
	return true
}

// LastOTPFor returns the most recent code "sent" to an address
func (m *MockEmailService) LastOTPFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOTP[email]
}

// SentCount returns how many messages of the given type were recorded.
// An empty type counts everything.
func (m *MockEmailService) SentCount(emailType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if emailType == "" {
		return len(m.sent)
	}
	count := 0
	for _, s := range m.sent {
		if s.Type == emailType {
			count++
		}
	}
	return count
}

// Clear drops recorded history
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.lastOTP = make(map[string]string)
}
