package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	apperrors "ymurakami/suumowatcher/pkg/errors"
)

const (
	defaultPushEndpoint = "https://api.line.me/v2/bot/message/push"

	// Listings beyond this count are summarized but not individually
	// detailed.
	maxDetailMessages = 10
)

// LineNotifier pushes one summary message plus per-listing detail messages
// through the LINE Messaging API.
type LineNotifier struct {
	channelToken string
	userID       string
	endpoint     string
	client       *http.Client
	log          *logger.Logger
}

// NewLineNotifier creates a new LINE notifier
func NewLineNotifier(channelToken, userID string) *LineNotifier {
	return NewLineNotifierWithEndpoint(channelToken, userID, defaultPushEndpoint)
}

// NewLineNotifierWithEndpoint creates a LINE notifier against a custom push
// endpoint, e.g. a local stub.
func NewLineNotifierWithEndpoint(channelToken, userID, endpoint string) *LineNotifier {
	return &LineNotifier{
		channelToken: channelToken,
		userID:       userID,
		endpoint:     endpoint,
		client:       &http.Client{Timeout: 10 * time.Second},
		log:          logger.ForComponent("notifier"),
	}
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePush struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// Notify sends a summary followed by up to maxDetailMessages detail
// messages. Individual push failures are logged; the first one is returned
// so the caller can log it too.
func (n *LineNotifier) Notify(newListings []scraper.Listing, criterionName string) error {
	if len(newListings) == 0 {
		return nil
	}

	var firstErr error

	summary := fmt.Sprintf("🏠 新着物件のお知らせ\n検索条件: %s\n%d件の新着物件があります", criterionName, len(newListings))
	if err := n.push(summary); err != nil {
		n.log.Error().Err(err).Str("criterion", criterionName).Msg("Summary push failed")
		firstErr = err
	}

	detailCount := len(newListings)
	if detailCount > maxDetailMessages {
		detailCount = maxDetailMessages
	}

	for _, listing := range newListings[:detailCount] {
		if err := n.push(detailText(listing)); err != nil {
			n.log.Error().Err(err).Str("url", listing.URL).Msg("Detail push failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	n.log.Info().Str("criterion", criterionName).Int("detailed", detailCount).Msg("Notified new listings")
	return firstErr
}

// Close implements Notifier; the HTTP client holds no open resources.
func (n *LineNotifier) Close() error {
	return nil
}

// push sends one text message to the configured user.
func (n *LineNotifier) push(text string) error {
	body, err := json.Marshal(linePush{
		To:       n.userID,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return apperrors.NewNotification("line", "encode push", err)
	}

	req, err := http.NewRequest("POST", n.endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNotification("line", "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.channelToken)

	resp, err := n.client.Do(req)
	if err != nil {
		return apperrors.NewNotification("line", "push request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewNotification("line", fmt.Sprintf("push returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// detailText renders one listing the way the LINE channel expects it.
// Blank fields get placeholders so the message never shows empty slots.
func detailText(l scraper.Listing) string {
	name := l.Name
	if name == "" {
		name = "物件名未設定"
	}
	address := l.Address
	if address == "" {
		address = "住所未設定"
	}
	station := l.Station
	if station == "" {
		station = "駅未設定"
	}
	layout := l.Layout
	if layout == "" {
		layout = "間取り未設定"
	}

	return fmt.Sprintf(
		"🏠 %s\n📍 %s\n🚶 %s 徒歩%d分\n💰 家賃%d万円 (管理費%d円)\n💴 敷金%d万円 / 礼金%d万円\n🏠 %s / %.1fm² / 築%d年\n🔍 %s",
		name, address, station, l.WalkMinutes, l.Rent, l.ManagementFee,
		l.Deposit, l.KeyMoney, layout, l.Size, l.AgeYears, l.URL,
	)
}
