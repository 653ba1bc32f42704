// Package mailx defines the contract for sending email messages.
//
// The rest of the service stays independent from any specific provider: the
// auth core works with the Mail interface and Message payload, while the
// concrete delivery mechanism (SMTP here) lives in this package and is wired
// in once at application startup.
package mailx
