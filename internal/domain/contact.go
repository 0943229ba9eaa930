package domain

import "time"

// MaxMessagePreviewLength bounds the stored snippet of the first message.
const MaxMessagePreviewLength = 160

// ContactChannel is the channel through which a user reached a provider.
type ContactChannel string

const (
	ChannelWhatsApp ContactChannel = "whatsapp"
	ChannelForm     ContactChannel = "form"
)

// Valid reports whether the channel is one of the supported values.
func (c ContactChannel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelForm
}

// ContactIntent records that a user attempted to reach a provider. It is the
// anti-spam evidence consulted before a review is accepted. Created once,
// mutated only to set RespondedAt, never deleted.
type ContactIntent struct {
	ID             string         `json:"id"`
	UserID         int64          `json:"userId"`
	ProviderID     int64          `json:"providerId"`
	Channel        ContactChannel `json:"channel"`
	MessagePreview *string        `json:"messagePreview,omitempty"`
	RespondedAt    *time.Time     `json:"providerRespondedAt,omitempty"`
	IP             *string        `json:"-"`
	Device         *string        `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
