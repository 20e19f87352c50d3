package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/internal/utils"
	"github.com/ironforge/gym-admin-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles login, session resolution and logout for staff and members
type AuthService struct {
	gateway
	staff      StaffStore
	members    MemberStore
	sessions   SessionStore
	rateLimit  *RateLimitService
	jwtService *jwt.Service
	dummyHash  []byte
}

// NewAuthService creates a new auth service. rateLimit may be nil to disable throttling.
func NewAuthService(deps Deps, staff StaffStore, members MemberStore, sessions SessionStore, rateLimit *RateLimitService, jwtService *jwt.Service, bcryptCost int) (*AuthService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	// Compared against for unknown emails so every failed login costs one bcrypt run
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hash: %w", err)
	}

	return &AuthService{
		gateway:    newGateway(deps),
		staff:      staff,
		members:    members,
		sessions:   sessions,
		rateLimit:  rateLimit,
		jwtService: jwtService,
		dummyHash:  dummyHash,
	}, nil
}

// principal is an account that passed the password check
type principal struct {
	subjectID   uuid.UUID
	subjectType jwt.SubjectType
	role        access.Role
	name        string
	email       string
}

func (p principal) identity(sessionID uuid.UUID) access.Identity {
	identity := access.Identity{
		SubjectID: p.subjectID,
		Role:      p.role,
		Email:     p.email,
		Name:      p.name,
		SessionID: sessionID,
	}
	if p.subjectType == jwt.SubjectMember {
		memberID := p.subjectID
		identity.MemberID = &memberID
	}
	return identity
}

// Login checks the credentials in raw and opens a session.
// Unknown emails, wrong passwords and inactive accounts fail the same way.
func (s *AuthService) Login(ctx context.Context, raw map[string]interface{}) (*models.LoginResponse, error) {
	var req models.LoginRequest
	if err := s.decode(raw, &req); err != nil {
		return nil, err
	}
	email := strings.ToLower(req.Email)
	client := ClientInfoFrom(ctx)

	if s.rateLimit != nil {
		if err := s.rateLimit.CheckLogin(ctx, email, client.IPAddress); err != nil {
			var rateLimitErr *RateLimitError
			if errors.As(err, &rateLimitErr) {
				s.logger.WithFields(logrus.Fields{
					"email": email,
					"ip":    client.IPAddress,
					"type":  rateLimitErr.Type,
				}).Warn("Login throttled")
				return nil, err
			}
			return nil, storageFailure(s.logger, "check login rate limit", "login attempt", "", err)
		}
	}

	account, err := s.authenticate(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	if account == nil {
		s.loginFailed(ctx, email, client.IPAddress)
		return nil, &AuthenticationError{Reason: AuthInvalidCredentials}
	}

	now := s.clock.Current()
	expiresAt := now.Add(s.jwtService.SessionExpiry())
	session := &models.Session{
		ID:          uuid.New(),
		SubjectID:   account.subjectID,
		SubjectType: string(account.subjectType),
		Role:        string(account.role),
		ExpiresAt:   expiresAt,
	}
	if client.IPAddress != "" {
		ip := client.IPAddress
		session.IPAddress = &ip
	}
	if client.UserAgent != "" {
		userAgent := client.UserAgent
		deviceType := utils.ParseUserAgent(userAgent).DeviceType
		session.UserAgent = &userAgent
		session.DeviceType = &deviceType
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.fail("create session", "session", "", err)
	}

	token, err := s.jwtService.GenerateSessionToken(session.ID, account.subjectID, account.subjectType, string(account.role), account.email, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if account.subjectType == jwt.SubjectStaff {
		if err := s.staff.UpdateLastLogin(ctx, account.subjectID, now); err != nil {
			s.logger.WithError(err).WithField("staff_id", account.subjectID).Warn("Failed to update last login")
		}
	}
	if s.rateLimit != nil {
		if err := s.rateLimit.Reset(ctx, email); err != nil {
			s.logger.WithError(err).WithField("email", email).Warn("Failed to clear login attempts")
		}
	}

	identity := account.identity(session.ID)
	s.logger.WithFields(logrus.Fields{
		"subject_id":   account.subjectID,
		"subject_type": account.subjectType,
		"role":         account.role,
		"session_id":   session.ID,
	}).Info("Login successful")
	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditLoginSuccess,
		EntityType: "session",
		EntityID:   session.ID.String(),
	})

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  sessionIdentity(identity, account.subjectType),
	}, nil
}

// authenticate returns the account matching email and password, or nil when there is none.
// Staff accounts are checked before members.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (*principal, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !s.passwordMatches(staff.PasswordHash, password) || staff.Status != models.StaffStatusActive {
			return nil, nil
		}
		return &principal{
			subjectID:   staff.ID,
			subjectType: jwt.SubjectStaff,
			role:        access.Role(staff.Role),
			name:        staff.Name,
			email:       staff.Email,
		}, nil
	case !errors.Is(err, database.ErrNotFound):
		return nil, s.fail("get staff user", "staff user", "", err)
	}

	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.passwordMatches("", password)
			return nil, nil
		}
		return nil, s.fail("get member", "member", "", err)
	}

	hash := ""
	if member.PasswordHash != nil {
		hash = *member.PasswordHash
	}
	if !s.passwordMatches(hash, password) {
		return nil, nil
	}
	if member.Status.LocksOut() {
		return nil, nil
	}

	return &principal{
		subjectID:   member.ID,
		subjectType: jwt.SubjectMember,
		role:        access.RoleMember,
		name:        member.Name,
		email:       member.Email,
	}, nil
}

// passwordMatches runs a bcrypt comparison even when hash is empty
func (s *AuthService) passwordMatches(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, ip string) {
	if s.rateLimit != nil {
		if err := s.rateLimit.RecordFailure(ctx, email, ip); err != nil {
			s.logger.WithError(err).Warn("Failed to record login attempt")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"email": email,
		"ip":    ip,
	}).Warn("Login failed")
	s.record(ctx, AuditEvent{
		Action:     models.AuditLoginFailed,
		EntityType: "session",
		Details:    map[string]interface{}{"email": email},
	})
}

// ResolveSession verifies a bearer token and returns the identity of its open session
func (s *AuthService) ResolveSession(ctx context.Context, token string) (access.Identity, error) {
	claims, err := s.jwtService.ValidateSessionToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return access.Identity{}, &AuthenticationError{Reason: AuthExpired}
		}
		return access.Identity{}, &AuthenticationError{Reason: AuthInvalid}
	}

	sessionID, err := claims.SessionID()
	if err != nil {
		return access.Identity{}, &AuthenticationError{Reason: AuthInvalid}
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return access.Identity{}, &AuthenticationError{Reason: AuthInvalid}
		}
		return access.Identity{}, s.fail("get session", "session", sessionID.String(), err)
	}

	if session.SubjectID != claims.SubjectID || session.RevokedAt != nil {
		return access.Identity{}, &AuthenticationError{Reason: AuthInvalid}
	}
	if !session.IsUsable(s.clock.Current()) {
		return access.Identity{}, &AuthenticationError{Reason: AuthExpired}
	}

	account := principal{
		subjectID:   session.SubjectID,
		subjectType: jwt.SubjectType(session.SubjectType),
		role:        access.Role(session.Role),
		email:       claims.Email,
	}
	return account.identity(session.ID), nil
}

// CurrentIdentity describes the logged-in caller, including their display name
func (s *AuthService) CurrentIdentity(ctx context.Context, identity access.Identity) (*models.SessionIdentity, error) {
	subjectType := jwt.SubjectStaff
	if identity.IsMember() {
		subjectType = jwt.SubjectMember
		member, err := s.members.GetByID(ctx, identity.SubjectID)
		if err != nil {
			return nil, s.fail("get member", "member", identity.SubjectID.String(), err)
		}
		identity.Name = member.Name
		identity.Email = member.Email
	} else {
		staff, err := s.staff.GetByID(ctx, identity.SubjectID)
		if err != nil {
			return nil, s.fail("get staff user", "staff user", identity.SubjectID.String(), err)
		}
		identity.Name = staff.Name
		identity.Email = staff.Email
	}

	result := sessionIdentity(identity, subjectType)
	return &result, nil
}

// Logout revokes the caller's session
func (s *AuthService) Logout(ctx context.Context, identity access.Identity) error {
	err := s.sessions.Revoke(ctx, identity.SessionID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return s.fail("revoke session", "session", identity.SessionID.String(), err)
	}

	s.record(ctx, AuditEvent{
		Actor:      &identity,
		Action:     models.AuditLogout,
		EntityType: "session",
		EntityID:   identity.SessionID.String(),
	})
	return nil
}

func sessionIdentity(identity access.Identity, subjectType jwt.SubjectType) models.SessionIdentity {
	return models.SessionIdentity{
		SubjectID:   identity.SubjectID,
		SubjectType: string(subjectType),
		Role:        string(identity.Role),
		Name:        identity.Name,
		Email:       identity.Email,
		MemberID:    identity.MemberID,
	}
}
