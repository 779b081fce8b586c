package service

import (
	"context"
	"time"

	"jenny-assistant-be/internal/entity"
	"jenny-assistant-be/internal/repository/specification"
	"jenny-assistant-be/internal/repository/unitofwork"
	"jenny-assistant-be/pkg/calendar"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ICalendarTokenService persists calendar OAuth tokens and lists connections.
type ICalendarTokenService interface {
	calendar.TokenStore
	Connected(ctx context.Context, userID string) ([]string, error)
	IsConnected(ctx context.Context, userID, provider string) (bool, error)
	Disconnect(ctx context.Context, userID, provider string) error
}

type calendarTokenService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCalendarTokenService(uowFactory unitofwork.RepositoryFactory) ICalendarTokenService {
	return &calendarTokenService{uowFactory: uowFactory}
}

func (s *calendarTokenService) Token(ctx context.Context, userID, provider string) (*oauth2.Token, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conn, err := uow.CalendarConnectionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.ByProvider{Provider: provider},
	)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, calendar.ErrNotConnected
	}

	tok := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		TokenType:    conn.TokenType,
	}
	if conn.Expiry != nil {
		tok.Expiry = *conn.Expiry
	}
	return tok, nil
}

func (s *calendarTokenService) SaveToken(ctx context.Context, userID, provider string, token *oauth2.Token) error {
	now := time.Now()
	conn := &entity.CalendarConnection{
		Id:           uuid.New(),
		UserId:       userID,
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		CreatedAt:    now,
		UpdatedAt:    &now,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		conn.Expiry = &expiry
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CalendarConnectionRepository().Upsert(ctx, conn)
}

func (s *calendarTokenService) Connected(ctx context.Context, userID string) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conns, err := uow.CalendarConnectionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "provider"},
	)
	if err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(conns))
	for _, c := range conns {
		providers = append(providers, c.Provider)
	}
	return providers, nil
}

func (s *calendarTokenService) IsConnected(ctx context.Context, userID, provider string) (bool, error) {
	_, err := s.Token(ctx, userID, provider)
	if err == calendar.ErrNotConnected {
		return false, nil
	}
	return err == nil, err
}

func (s *calendarTokenService) Disconnect(ctx context.Context, userID, provider string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CalendarConnectionRepository().Delete(ctx, userID, provider)
}
