// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/identity"
)

// RequestTimeout bounds every call to Twilio.
const RequestTimeout = 10 * time.Second

const statusApproved = "approved"

// verifyService is the subset of the Verify v2 API in use.
// *verify.ApiService implements it.
type verifyService interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// messageService is the subset of the Messages API in use.
// *twilioApi.ApiService implements it.
type messageService interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NewTwilioClient builds a REST client with RequestTimeout applied.
func NewTwilioClient(accountSID, authToken string) *twilio.RestClient {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(RequestTimeout)
	return client
}

// TwilioVerify starts and checks verifications through a Twilio Verify
// service. It implements otp.RemoteVerifier.
type TwilioVerify struct {
	api        verifyService
	serviceSID string
}

func NewTwilioVerify(client *twilio.RestClient, serviceSID string) *TwilioVerify {
	return &TwilioVerify{api: client.VerifyV2, serviceSID: serviceSID}
}

// Start asks Twilio to send a code to phone over channel ("sms" or
// "whatsapp"). The whatsapp: prefix is stripped since Verify takes a bare
// E.164 number.
func (v *TwilioVerify) Start(ctx context.Context, phone, channel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &verify.CreateVerificationParams{}
	params.SetTo(strings.TrimPrefix(phone, identity.WhatsAppPrefix))
	params.SetChannel(channel)

	resp, err := v.api.CreateVerification(v.serviceSID, params)
	if err != nil {
		return "", fmt.Errorf("twilio verify start failed: %w", describe(err))
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// Check reports whether Twilio approved code for phone
func (v *TwilioVerify) Check(ctx context.Context, phone, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(strings.TrimPrefix(phone, identity.WhatsAppPrefix))
	params.SetCode(code)

	resp, err := v.api.CreateVerificationCheck(v.serviceSID, params)
	if err != nil {
		return false, fmt.Errorf("twilio verify check failed: %w", describe(err))
	}
	return resp != nil && resp.Status != nil && *resp.Status == statusApproved, nil
}

// TwilioMessenger sends pre-approved WhatsApp content templates
type TwilioMessenger struct {
	api  messageService
	from string
}

func NewTwilioMessenger(client *twilio.RestClient, from string) *TwilioMessenger {
	return &TwilioMessenger{api: client.Api, from: from}
}

// SendTemplate sends the content template contentSID to a whatsapp:
// address and returns the message SID. variables is the JSON object text
// Twilio expects for ContentVariables; empty sends none.
func (m *TwilioMessenger) SendTemplate(ctx context.Context, to, contentSID, variables string) (string, error) {
	if !strings.HasPrefix(to, identity.WhatsAppPrefix) {
		return "", apperr.ErrInvalidTo
	}
	if !strings.HasPrefix(m.from, identity.WhatsAppPrefix) {
		return "", apperr.ErrInvalidFrom
	}
	if err := ctx.Err(); err != nil {
		return "", apperr.SendFailed(err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(m.from)
	params.SetTo(to)
	params.SetContentSid(contentSID)
	if variables != "" {
		params.SetContentVariables(variables)
	}

	resp, err := m.api.CreateMessage(params)
	if err != nil {
		return "", apperr.SendFailed(describe(err))
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// describe flattens a Twilio REST error into its status and message
func describe(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return fmt.Errorf("%d %s: %w", restErr.Status, restErr.Message, err)
	}
	return err
}
