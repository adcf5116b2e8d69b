package config

import "time"

const (
	// Ledger purge interval
	ProposalCleanup = time.Hour

	// Telegram API call timeout for background work
	RequestTimeout = 30 * time.Second
)

// User-facing texts.
const (
	TextWelcome        = "👋 Hi! Press «📝 Propose post» to suggest a post for one of your channels."
	TextReset          = "↩️ Cancelled. Press «📝 Propose post» to start again."
	TextChooseChannel  = "📢 Choose a channel for your post:"
	TextNoChannels     = "😔 No channels available. You must be a member of a channel to propose posts."
	TextSendDraft      = "✍️ Send the post: text, photo, video or any other message."
	TextProposed       = "✅ Post proposed. Administrators will review it."
	TextSelected       = "Selected channel %s"
	TextPublished      = "✅ Published to %s"
	TextAlreadyDone    = "ℹ️ This post was already published"
	TextPublishFailed  = "❌ Failed to publish to %s"
	TextStale          = "⌛ This button is no longer active. Start over with «📝 Propose post»."
	TextTooManyRequest = "⏳ Too many requests. Please wait a little."
	TextError          = "❌ Something went wrong. Please try again."
)
