package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
	"github.com/yvasiuk/wellness-bot/internal/insight"
	"github.com/yvasiuk/wellness-bot/internal/sched"
	"github.com/yvasiuk/wellness-bot/internal/store"
)

// Conversation steps held in the per-chat session.
const (
	stepRegGender   = "reg_gender"
	stepRegAge      = "reg_age"
	stepRegHeight   = "reg_height"
	stepRegWeight   = "reg_weight"
	stepRegActivity = "reg_activity"
	stepRegBedtime  = "reg_bedtime"
	stepRegWakeup   = "reg_wakeup"
	stepRegTZ       = "reg_tz_confirm"
	stepRegTZManual = "reg_tz_manual"
	stepRegHabits   = "reg_habits"
	stepRegNotify   = "reg_notify"
	stepRegReview   = "reg_review"

	stepEditField  = "edit_field"
	stepEditHabits = "edit_habits"

	stepCheckSleep        = "ci_sleep"
	stepCheckSatisfaction = "ci_satisfaction"
	stepCheckMood         = "ci_mood"
	stepCheckEnergy       = "ci_energy"
	stepCheckStress       = "ci_stress"
	stepCheckWakeup       = "ci_wakeup"
	stepCheckConditional  = "ci_conditional"
	stepCheckNotes        = "ci_notes"
	stepCheckReflection   = "ci_reflection"
)

// session keeps the state of one chat's active conversation. It is
// in-memory only; a restart drops half-finished flows.
type session struct {
	step string

	// registration / profile editing
	draft      *domain.Profile
	habits     map[string]bool
	detectedTZ string
	editField  string
	editing    bool

	// active check-in
	entry    *domain.Entry
	question string
}

// Router wires Telegram updates to handlers and holds minimal in-memory
// state. It also implements sched.Sender so reminder jobs can reach the chat.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	repo     store.Repo
	svc      *sched.Service
	insights *insight.Generator

	mu       sync.Mutex
	sessions map[int64]*session

	now func() time.Time
}

// NewRouter creates a router. Bind must be called with the scheduler service
// before updates are handled.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, gen *insight.Generator) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		repo:     repo,
		insights: gen,
		sessions: make(map[int64]*session),
		now:      time.Now,
	}
}

// Bind attaches the scheduler service. Split from NewRouter because the
// service itself needs the router as its Sender.
func (r *Router) Bind(svc *sched.Service) { r.svc = svc }

func (r *Router) session(chatID int64) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		s = &session{}
		r.sessions[chatID] = s
	}
	return s
}

func (r *Router) clearSession(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID, msg.From)
		case strings.HasPrefix(text, "/help"):
			r.sendHTML(chatID, helpText)
		case strings.HasPrefix(text, "/my_profile"):
			r.handleMyProfile(ctx, chatID)
		case strings.HasPrefix(text, "/weekly_report"):
			r.handleWeeklyReport(ctx, chatID)
		case strings.HasPrefix(text, "/history"):
			r.handleHistory(ctx, chatID)
		case strings.HasPrefix(text, "/jobs"):
			r.handleJobs(ctx, chatID)
		case strings.HasPrefix(text, "/reload_schedule"):
			r.handleReloadSchedule(ctx, chatID)
		case strings.HasPrefix(text, "/edit_profile"):
			r.handleEditProfile(ctx, chatID)
		case strings.HasPrefix(text, "/delete_profile"):
			r.handleDeleteProfile(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		chatID := cb.Message.Chat.ID
		data := cb.Data

		prefix, value := data, ""
		if i := strings.IndexByte(data, ':'); i >= 0 {
			prefix, value = data[:i], data[i+1:]
		}

		switch prefix {
		case "tz":
			r.handleTimezoneCallback(ctx, chatID, value, cb.ID)
		case "habit", "habits":
			r.handleHabitsCallback(ctx, chatID, prefix, value, cb.ID)
		case "notify":
			r.handleNotifyCallback(ctx, chatID, value, cb.ID)
		case "profile":
			r.handleProfileReviewCallback(ctx, chatID, value, cb.ID)
		case "edit":
			r.handleEditCallback(ctx, chatID, value, cb.ID)
		case "delete":
			r.handleDeleteCallback(ctx, chatID, value, cb.ID)
		case "start":
			r.handleCheckinStart(ctx, chatID, domain.Period(value), cb.ID)
		case "rate":
			r.handleRatingCallback(ctx, chatID, value, cb.ID)
		case "wakeup":
			r.handleWakeupCallback(ctx, chatID, value, cb.ID)
		case "snooze":
			r.handleSnoozeCallback(ctx, chatID, domain.Period(value), cb.ID)
		case "skip":
			r.handleSkipCallback(ctx, chatID, domain.Period(value), cb.ID)
		default:
			// stale or unknown button, ignore
		}
		return
	}
}

// SendCheckinPrompt delivers a reminder with the check-in keyboard. It makes
// sure the day's entry row exists and moves it to the sent state.
// This makes Router satisfy sched.Sender.
func (r *Router) SendCheckinPrompt(userID int64, text string, period domain.Period, snoozeCount int) error {
	ctx := context.Background()

	p, err := r.repo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	today := r.userToday(p)
	if _, err := r.repo.EnsureEntry(ctx, userID, today, period); err != nil {
		return err
	}
	if err := r.repo.MarkSent(ctx, userID, today, period); err != nil {
		r.log.Warn("mark sent failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = checkinKeyboard(period, snoozeCount, r.svc.MaxSnoozes(), r.svc.SnoozeDelay())
	_, err = r.bot.Send(msg)
	return err
}

// userToday is the current date in the user's timezone.
func (r *Router) userToday(p *domain.Profile) string {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return r.now().In(loc).Format("2006-01-02")
}

// --- send helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}

func (r *Router) alertCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}

// handleFreeForm dispatches non-command text to whatever flow is awaiting
// input in this chat.
func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	s := r.session(chatID)
	switch s.step {
	case stepRegAge, stepRegHeight, stepRegWeight, stepRegGender, stepRegActivity,
		stepRegBedtime, stepRegWakeup, stepRegTZManual, stepRegNotify:
		r.handleRegistrationText(ctx, chatID, s, text)
	case stepEditField:
		r.handleEditFieldText(ctx, chatID, s, text)
	case stepCheckConditional, stepCheckNotes, stepCheckReflection:
		r.handleCheckinText(ctx, chatID, s, text)
	default:
		// no pending flow, ignore
	}
}
