package bot

import (
	"context"
	"log"

	"condocheck/internal/model"
)

// SendTodayNotices tells every linked user about their pending tasks for today.
func (b *Bot) SendTodayNotices(ctx context.Context) error {
	users, err := b.svc.Users.Linked(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b.notifyToday(ctx, user)
	}
	return nil
}

// SendDigests sends the dashboard summary to every linked manager.
func (b *Bot) SendDigests(ctx context.Context) error {
	users, err := b.svc.Users.Linked(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.svc.Reminders.ManagerDigest(ctx, user, now)
		if err != nil {
			log.Printf("build digest for user %d: %v", user.ID, err)
			continue
		}
		if text == "" || user.TelegramID == nil {
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			log.Printf("send digest to %d: %v", user.ID, err)
		}
	}
	return nil
}

// notifyToday is best effort: failures are logged, never retried.
func (b *Bot) notifyToday(ctx context.Context, user model.User) {
	if user.TelegramID == nil {
		return
	}
	text, err := b.svc.Reminders.TodayNotice(ctx, user, b.now())
	if err != nil {
		log.Printf("build notice for user %d: %v", user.ID, err)
		return
	}
	if text == "" {
		return
	}
	if err := b.sendText(*user.TelegramID, text); err != nil {
		log.Printf("send notice to %d: %v", user.ID, err)
	}
}
