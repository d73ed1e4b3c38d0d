package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/nhle/booking-agent/internal/model"
)

// successData feeds the confirmation template.
type successData struct {
	GuestName  string
	BookingRef string
	RoomType   string
	CheckIn    string
	CheckOut   string
	Nights     int
	Adults     int
	Children   int
	Generated  string
}

// failureData feeds the failure template.
type failureData struct {
	GuestName string
	Reason    string
	Generated string
}

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Booking Confirmation</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background:#f4f6f9;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:30px 0;">
    <tr><td align="center">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:12px;overflow:hidden;">
        <tr>
          <td style="background:#1a73e8;padding:36px 40px;text-align:center;">
            <h1 style="color:#ffffff;margin:0;font-size:26px;">Booking Confirmed!</h1>
            <p style="color:rgba(255,255,255,0.85);margin:8px 0 0;font-size:15px;">Your reservation has been successfully created</p>
          </td>
        </tr>
        <tr>
          <td style="padding:30px 40px 20px;">
            <p style="color:#333;font-size:16px;margin:0 0 6px;">Dear <strong>{{.GuestName}}</strong>,</p>
            <p style="color:#555;font-size:14px;margin:0;line-height:1.6;">
              We're delighted to confirm your room reservation. Your booking details
              are listed below. We look forward to welcoming you!
            </p>
          </td>
        </tr>
        <tr>
          <td style="padding:0 40px 20px;">
            <div style="background:#e8f0fe;border-left:4px solid #1a73e8;padding:14px 18px;">
              <span style="color:#1a73e8;font-size:13px;font-weight:600;">BOOKING REFERENCE</span>
              <div style="color:#1a1a2e;font-size:22px;font-weight:700;margin-top:4px;">#{{.BookingRef}}</div>
            </div>
          </td>
        </tr>
        <tr>
          <td style="padding:0 40px 30px;">
            <table width="100%" cellpadding="0" cellspacing="0" style="border:1px solid #e8eaed;">
              <tr><td style="padding:12px 18px;color:#888;width:40%;">Room Type</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.RoomType}}</td></tr>
              <tr style="background:#f8f9fa;"><td style="padding:12px 18px;color:#888;">Check-In</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.CheckIn}}</td></tr>
              <tr><td style="padding:12px 18px;color:#888;">Check-Out</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.CheckOut}}</td></tr>
              <tr style="background:#f8f9fa;"><td style="padding:12px 18px;color:#888;">Nights</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.Nights}}</td></tr>
              <tr><td style="padding:12px 18px;color:#888;">Adults</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.Adults}}</td></tr>
              <tr style="background:#f8f9fa;"><td style="padding:12px 18px;color:#888;">Children</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.Children}}</td></tr>
              <tr><td style="padding:12px 18px;color:#888;">Guest Name</td><td style="padding:12px 18px;color:#1a1a2e;font-weight:600;">{{.GuestName}}</td></tr>
            </table>
          </td>
        </tr>
        <tr>
          <td style="background:#f8f9fa;padding:25px 40px;text-align:center;">
            <p style="margin:0;font-size:13px;color:#666;">
              Confirmation generated on {{.Generated}}<br>
              Please present this confirmation email upon check-in.
            </p>
          </td>
        </tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

var failureTemplate = template.Must(template.New("failure").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Booking Issue</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background:#f4f6f9;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:30px 0;">
    <tr><td align="center">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:12px;overflow:hidden;">
        <tr>
          <td style="background:#e8710a;padding:36px 40px;text-align:center;">
            <h1 style="color:#ffffff;margin:0;font-size:26px;">Booking Not Completed</h1>
          </td>
        </tr>
        <tr>
          <td style="padding:30px 40px 20px;">
            <p style="color:#333;font-size:16px;margin:0 0 6px;">Dear <strong>{{.GuestName}}</strong>,</p>
            <p style="color:#555;font-size:14px;margin:0;line-height:1.6;">
              Unfortunately we could not complete your room booking request.
            </p>
          </td>
        </tr>
        <tr>
          <td style="padding:0 40px 30px;">
            <div style="background:#fdecea;border-left:4px solid #d93025;padding:14px 18px;">
              <span style="color:#d93025;font-size:13px;font-weight:600;">REASON</span>
              <div style="color:#1a1a2e;font-size:15px;margin-top:4px;">{{.Reason}}</div>
            </div>
          </td>
        </tr>
        <tr>
          <td style="padding:0 40px 30px;">
            <p style="color:#555;font-size:14px;margin:0;line-height:1.6;">
              Please reply to this email with the complete details and we will
              try again.
            </p>
          </td>
        </tr>
        <tr>
          <td style="background:#f8f9fa;padding:25px 40px;text-align:center;">
            <p style="margin:0;font-size:13px;color:#666;">Generated on {{.Generated}}</p>
          </td>
        </tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

const dateLayout = "2006-01-02"

// SuccessNotification renders the confirmation email for a confirmed
// booking. The body echoes the reference, guest name, dates, room
// type, and occupancy verbatim.
func SuccessNotification(
	req model.BookingRequest, ref string, now time.Time,
) (Notification, error) {
	data := successData{
		GuestName:  req.GuestName,
		BookingRef: ref,
		RoomType:   req.RoomType,
		CheckIn:    req.CheckIn.Format(dateLayout),
		CheckOut:   req.CheckOut.Format(dateLayout),
		Nights:     req.Nights(),
		Adults:     req.Adults,
		Children:   req.Children,
		Generated:  now.Format("January 2, 2006 at 3:04 PM"),
	}

	var sb strings.Builder
	if err := successTemplate.Execute(&sb, data); err != nil {
		return Notification{}, fmt.Errorf("rendering confirmation email: %w", err)
	}

	return Notification{
		Recipient: req.GuestEmail,
		Subject:   fmt.Sprintf("Room Booking Confirmed - #%s", ref),
		HTMLBody:  sb.String(),
	}, nil
}

// FailureNotification renders the failure email with a plain-language
// reason.
func FailureNotification(
	recipient, guestName, reason string, now time.Time,
) (Notification, error) {
	if guestName == "" {
		if at := strings.Index(recipient, "@"); at > 0 {
			guestName = recipient[:at]
		} else {
			guestName = "Guest"
		}
	}

	data := failureData{
		GuestName: guestName,
		Reason:    reason,
		Generated: now.Format("January 2, 2006 at 3:04 PM"),
	}

	var sb strings.Builder
	if err := failureTemplate.Execute(&sb, data); err != nil {
		return Notification{}, fmt.Errorf("rendering failure email: %w", err)
	}

	return Notification{
		Recipient: recipient,
		Subject:   "Room Booking - Action Required",
		HTMLBody:  sb.String(),
	}, nil
}
