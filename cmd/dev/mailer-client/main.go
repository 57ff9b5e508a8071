// Dev tool: sends one templated mail through the configured sink so the
// SendGrid key and templates can be checked without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/azeasycpa/askcpa/internal/config"
	"github.com/azeasycpa/askcpa/internal/mailer"
)

func main() {
	to := flag.String("to", "", "Recipient address")
	tmpl := flag.String("template", string(mailer.TemplateQuestionReceived), "Template name")
	question := flag.String("question", "How do I record a refund in QuickBooks?", "Question text")
	answer := flag.String("answer", "", "Answer text (answer-notification only)")
	flag.Parse()

	if *to == "" {
		fmt.Fprintln(os.Stderr, "usage: mailer-client -to addr [-template name] [-question text] [-answer text]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	client, err := mailer.NewClient(cfg.Mailer, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mailer error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	data := mailer.Data{Question: *question, Answer: *answer, Email: *to}
	if err := client.Send(context.Background(), *to, mailer.Template(*tmpl), data); err != nil {
		fmt.Fprintf(os.Stderr, "Send error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Mail sent.")
}
