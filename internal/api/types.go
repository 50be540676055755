package api

// Settings is the organization-level display and behavior configuration.
// The backend's field set drifted over time; Normalize folds the legacy
// names into the canonical ones so nothing downstream branches on API
// vintage.
type Settings struct {
	Name           string              `json:"name"`
	SelectedColor  string              `json:"selectedColor"`
	LeadCapture    bool                `json:"leadCapture"`
	AvatarURL      string              `json:"avatarUrl,omitempty"`
	AutoOpen       bool                `json:"auto_open,omitempty"`
	FontName       string              `json:"font_name,omitempty"`
	BotBehavior    string              `json:"botBehavior,omitempty"`
	AIBehavior     string              `json:"ai_behavior,omitempty"`
	IsBotConnected bool                `json:"is_bot_connected,omitempty"`
	Sounds         *SoundNotifications `json:"sound_notifications,omitempty"`
	IntroVideo     *IntroVideo         `json:"intro_video,omitempty"`

	// Legacy field names still emitted by older backend revisions.
	LegacyAutoOpen      bool   `json:"auto_open_widget,omitempty"`
	LegacyVideoURL      string `json:"video_url,omitempty"`
	LegacyVideoDuration int    `json:"video_duration,omitempty"`
}

// SoundNotifications configures the widget's notification tones.
type SoundNotifications struct {
	Enabled      bool          `json:"enabled"`
	WelcomeSound *SoundToggle  `json:"welcome_sound,omitempty"`
	MessageSound *MessageSound `json:"message_sound,omitempty"`
}

// SoundToggle is a single on/off sound switch.
type SoundToggle struct {
	Enabled bool `json:"enabled"`
}

// MessageSound configures the per-message tone.
type MessageSound struct {
	Enabled    bool `json:"enabled"`
	PlayOnSend bool `json:"play_on_send"`
}

// IntroVideo configures the intro video shown in the chat flow.
type IntroVideo struct {
	Enabled          bool   `json:"enabled"`
	VideoURL         string `json:"video_url,omitempty"`
	VideoFilename    string `json:"video_filename,omitempty"`
	Autoplay         bool   `json:"autoplay"`
	Duration         int    `json:"duration,omitempty"`
	ShowOnFirstVisit bool   `json:"show_on_first_visit"`
}

// Normalize maps legacy field names onto the canonical ones. Applied once
// at the fetch boundary.
func (s *Settings) Normalize() {
	if s.LegacyAutoOpen {
		s.AutoOpen = true
	}
	if s.LegacyVideoURL != "" && s.IntroVideo == nil {
		s.IntroVideo = &IntroVideo{
			Enabled:  true,
			VideoURL: s.LegacyVideoURL,
			Autoplay: true,
			Duration: s.LegacyVideoDuration,
		}
	}
}

// InstantReply is a pre-authored message surfaced to visitors before they
// initiate chat.
type InstantReply struct {
	Message string `json:"message"`
	Order   int    `json:"order"`
}

// MessageMetadata tags a history entry with its origin.
type MessageMetadata struct {
	Type    string `json:"type,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
}

// ConversationMessage is one turn of server-held history.
type ConversationMessage struct {
	Role     string           `json:"role"` // "user" | "assistant"
	Content  string           `json:"content"`
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

// UserData carries the server's per-session record.
type UserData struct {
	ConversationHistory []ConversationMessage `json:"conversation_history"`
	Name                string                `json:"name,omitempty"`
	Email               string                `json:"email,omitempty"`
	AgentMode           bool                  `json:"agent_mode,omitempty"`
}

// ChatResponse is the shape shared by the ask and history endpoints.
type ChatResponse struct {
	Answer    string   `json:"answer,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Language  string   `json:"language,omitempty"`
	AgentMode bool     `json:"agent_mode,omitempty"`
	UserData  UserData `json:"user_data"`
}

// SlotConfirmation is the structured metadata attached to a booking turn.
type SlotConfirmation struct {
	SlotID string `json:"slot_id"`
	Day    string `json:"day"`
	Time   string `json:"time"`
}

type settingsResponse struct {
	Status   string   `json:"status"`
	Settings Settings `json:"settings"`
}

type instantReplyResponse struct {
	Status string `json:"status"`
	Data   struct {
		IsActive bool           `json:"isActive"`
		Messages []InstantReply `json:"messages"`
	} `json:"data"`
}

type askRequest struct {
	Question         string            `json:"question"`
	SessionID        string            `json:"session_id"`
	SlotConfirmation *SlotConfirmation `json:"slot_confirmation,omitempty"`
}
