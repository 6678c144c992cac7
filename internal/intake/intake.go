// Package intake runs the linear question dialog that builds a UserProfile.
package intake

import (
	"card-advisor/internal/domain"
	"strconv"
	"strings"
	"sync"
)

const (
	Welcome = "Hi! I'm your personal credit card advisor. I'll help you find the perfect credit card based on your needs and spending habits. Let's get started! 🚀\n\n" + AskIncome

	AskIncome      = "What's your approximate monthly income?"
	AskSpending    = "Great! What are your main spending categories? (e.g., travel, dining, shopping)"
	AskBenefit     = "What is your most preferred benefit? (e.g., cashback, travel points)"
	AskCreditScore = "What is your approximate credit score?"

	InvalidIncome      = "Please enter a valid number for your monthly income."
	InvalidCreditScore = "Please enter a valid number for your credit score."
	UnknownBenefit     = "Please pick one of: cashback, travel points, rewards, lounge access, insurance, zero fees."

	Generating = "Thanks! I'm now generating your personalized credit card recommendations..."
	Finished   = "Your recommendations are ready. Send /restart to start over."

	Help = "I ask four quick questions (income, spending categories, preferred benefit, credit score) and then suggest the cards that fit you best.\n\n" +
		"/start or /restart: begin again\n/help: show this message"
)

type Step int

const (
	StepIncome Step = iota
	StepSpending
	StepBenefit
	StepCreditScore
	StepDone
)

// Reply is what the dialog answers to one message. Profile is set only when
// Complete is true.
type Reply struct {
	Text     string
	Complete bool
	Profile  domain.UserProfile
}

// Session is one user's progress through the questions.
type Session struct {
	step    Step
	profile domain.UserProfile
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Step() Step { return s.step }

func (s *Session) Reset() {
	s.step = StepIncome
	s.profile = domain.UserProfile{}
}

// Handle advances the dialog with one user message.
func (s *Session) Handle(text string) Reply {
	text = strings.TrimSpace(text)

	switch command(text) {
	case "/start", "/restart":
		s.Reset()
		return Reply{Text: Welcome}
	case "/help":
		return Reply{Text: Help}
	}

	switch s.step {
	case StepIncome:
		income, ok := ParseIncome(text)
		if !ok {
			return Reply{Text: InvalidIncome}
		}
		s.profile.MonthlyIncome = income
		s.step = StepSpending
		return Reply{Text: AskSpending}

	case StepSpending:
		habits := ParseCategories(text)
		if len(habits) == 0 {
			return Reply{Text: AskSpending}
		}
		s.profile.SpendingHabits = habits
		s.step = StepBenefit
		return Reply{Text: AskBenefit}

	case StepBenefit:
		benefit := domain.ParseBenefit(text)
		if !benefit.Known() {
			return Reply{Text: UnknownBenefit}
		}
		s.profile.PreferredBenefits = benefit
		s.step = StepCreditScore
		return Reply{Text: AskCreditScore}

	case StepCreditScore:
		score, ok := ParseCreditScore(text)
		if !ok {
			return Reply{Text: InvalidCreditScore}
		}
		s.profile.CreditScore = score
		s.step = StepDone
		p := s.profile
		p.SpendingHabits = append([]string(nil), s.profile.SpendingHabits...)
		return Reply{Text: Generating, Complete: true, Profile: p}
	}

	return Reply{Text: Finished}
}

// command returns the bot command in text, dropping any @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

// ParseIncome keeps digits and dots and reads the longest leading number,
// so "₹85,000" is 85000.
func ParseIncome(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	num := leadingNumber(b.String())
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func leadingNumber(s string) string {
	dot := false
	for i, r := range s {
		if r == '.' {
			if dot {
				return s[:i]
			}
			dot = true
		}
	}
	return s
}

// ParseCategories splits on commas and lower-cases each entry.
func ParseCategories(text string) []string {
	return domain.NormalizeTags(strings.Split(text, ","))
}

// ParseCreditScore reads the leading integer, so "750 approx" is 750.
func ParseCreditScore(text string) (int, bool) {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(text[:end])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Sessions keeps one Session per chat.
type Sessions struct {
	mu    sync.Mutex
	chats map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{chats: make(map[int64]*Session)}
}

// Handle routes text to the chat's session, creating it on first contact.
func (s *Sessions) Handle(chatID int64, text string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.chats[chatID]
	if !ok {
		sess = NewSession()
		s.chats[chatID] = sess
		if command(strings.TrimSpace(text)) == "" {
			return Reply{Text: Welcome}
		}
	}
	return sess.Handle(text)
}

func (s *Sessions) Forget(chatID int64) {
	s.mu.Lock()
	delete(s.chats, chatID)
	s.mu.Unlock()
}
