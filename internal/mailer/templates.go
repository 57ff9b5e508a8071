package mailer

import (
	"fmt"
	"html"
	"time"
)

type Template string

const (
	TemplateQuestionReceived   Template = "question-received"
	TemplateAnswerNotification Template = "answer-notification"
	TemplateAdminNotification  Template = "admin-notification"
)

// Data carries the template fields. Answer is used by answer-notification,
// Email by admin-notification.
type Data struct {
	Question string
	Answer   string
	Email    string
}

// Render produces subject, plain text and HTML bodies for a template.
func Render(tmpl Template, data Data) (subject, text, htmlBody string, err error) {
	year := time.Now().Year()
	q := html.EscapeString(data.Question)

	switch tmpl {
	case TemplateQuestionReceived:
		subject = "Your Question Has Been Received - Ask the CPA Guy"
		text = fmt.Sprintf("Thank you for submitting your question to Ask the CPA Guy. Your question: %q has been received and will be reviewed by our CPA. We'll notify you when your answer is ready.", data.Question)
		htmlBody = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Your Question Has Been Received</h2>
<p>Thank you for submitting your question to Ask the CPA Guy.</p>
<blockquote><strong>Your question:</strong> %s</blockquote>
<p>Your question has been received and will be reviewed by our CPA. We'll notify you when your answer is ready.</p>
<p style="font-size: 12px; color: #666;">&copy; %d AZ Easy CPA. All rights reserved.</p>
</div>`, q, year)

	case TemplateAnswerNotification:
		subject = "Your Question Has Been Answered - Ask the CPA Guy"
		text = fmt.Sprintf("The CPA has answered your question: %q\n\nAnswer: %s\n\nThank you for using Ask the CPA Guy.", data.Question, data.Answer)
		htmlBody = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Your Question Has Been Answered</h2>
<blockquote><strong>Your question:</strong> %s</blockquote>
<blockquote><strong>Answer:</strong> %s</blockquote>
<p>Thank you for using Ask the CPA Guy. If you have additional questions, feel free to submit them on our website.</p>
<p style="font-size: 12px; color: #666;">&copy; %d AZ Easy CPA. All rights reserved.</p>
</div>`, q, html.EscapeString(data.Answer), year)

	case TemplateAdminNotification:
		subject = "New Question Submitted - CPA Dashboard"
		text = fmt.Sprintf("A new question has been submitted: %q\n\nFrom: %s\n\nPlease log in to the dashboard to review.", data.Question, data.Email)
		htmlBody = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>New Question Submitted</h2>
<blockquote><strong>Question:</strong> %s<br><strong>From:</strong> %s</blockquote>
<p>Please log in to the dashboard to review.</p>
<p style="font-size: 12px; color: #666;">&copy; %d AZ Easy CPA. All rights reserved.</p>
</div>`, q, html.EscapeString(data.Email), year)

	default:
		return "", "", "", fmt.Errorf("unknown mail template %q", tmpl)
	}

	return subject, text, htmlBody, nil
}
