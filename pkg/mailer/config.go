package mailer

// Config holds outbound email configuration. The Postmark tokens are
// optional so development environments can run with the dev sender;
// SenderEmail establishes the from identity for all outbound mail.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@localhost"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@localhost"`
	DevOutputDir         string `env:"MAILER_DEV_DIR" envDefault:"./tmp/emails"`
}
