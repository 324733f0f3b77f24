package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"budgetpilot/config"
	"budgetpilot/metrics"
	"budgetpilot/models"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("email delivery is disabled")

// Sender 邮件发送方式，测试中替换
type Sender func(m *gomail.Message) error

// EmailService 邮件服务
type EmailService struct {
	cfg  *config.EmailConfig
	send Sender
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// WithSender 替换发送方式
func (s *EmailService) WithSender(send Sender) *EmailService {
	s.send = send
	return s
}

// Enabled 是否启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendBudgetReport 发送预算报告邮件
func (s *EmailService) SendBudgetReport(toEmail string, record models.BudgetRecord) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := fmt.Sprintf("[BudgetPilot] Budget report %s", record.UpdatedAt.Format("2006-01-02"))
	body := s.generateReportBody(record, metrics.Calculate(record.Budget))

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// generateReportBody 生成报告邮件内容
func (s *EmailService) generateReportBody(record models.BudgetRecord, summary metrics.Summary) string {
	var rows strings.Builder
	for _, f := range models.GetFields() {
		v, _ := record.Budget.Get(f)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td class=\"num\">%.2f</td></tr>\n", f.Label(), v)
	}

	var warnings strings.Builder
	if len(summary.Warnings) == 0 {
		warnings.WriteString(`<p class="ok">✅ No warnings this month.</p>`)
	}
	for _, w := range summary.Warnings {
		fmt.Fprintf(&warnings, "<div class=\"warning\"><p>⚠️ %s</p></div>\n", html.EscapeString(w.Message))
	}

	savingsClass := "num"
	if summary.Totals.Savings < 0 {
		savingsClass = "num neg"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 30px; }
        table { width: 100%%; border-collapse: collapse; margin: 0 0 20px; }
        td { padding: 8px 4px; border-bottom: 1px solid #eee; color: #333; }
        .num { text-align: right; font-family: 'Courier New', monospace; }
        .neg { color: #dc2626; }
        .total td { font-weight: bold; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 12px; margin: 10px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .ok { color: #059669; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 BudgetPilot</h1>
            <p>%s</p>
        </div>
        <div class="content">
            <table>
%s            </table>
            <table>
                <tr class="total"><td>Expenses</td><td class="num">%.2f</td></tr>
                <tr class="total"><td>Burn rate</td><td class="num">%.2f</td></tr>
                <tr class="total"><td>Savings</td><td class="%s">%.2f</td></tr>
                <tr class="total"><td>Month-end prediction</td><td class="%s">%.2f</td></tr>
            </table>
            %s
        </div>
        <div class="footer">
            <p>Last synced %s</p>
        </div>
    </div>
</body>
</html>
`,
		html.EscapeString(record.Email),
		rows.String(),
		summary.Totals.Expenses,
		summary.Totals.BurnRate,
		savingsClass, summary.Totals.Savings,
		savingsClass, summary.Totals.MonthEndPrediction,
		warnings.String(),
		record.UpdatedAt.Format(time.RFC1123),
	)
}

// dialAndSend 通过 SMTP 发送
func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
