// Package mailer provides outbound email delivery behind the EmailSender
// interface, with a Postmark transport for production and a file-writing
// DevSender for local development.
package mailer
