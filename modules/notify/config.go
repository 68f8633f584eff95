package notify

// Config holds notification module settings.
type Config struct {
	EmailQueueName string `env:"EMAIL_QUEUE_NAME" envDefault:"email-queue"`
	SummaryLength  int    `env:"NOTIFY_SUMMARY_LENGTH" envDefault:"120"`
}
