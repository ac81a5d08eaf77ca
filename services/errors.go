package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrCannotRemoveCaptain   = errors.New("cannot remove the team captain")
	ErrRegistrationNotOpen   = errors.New("tournament registration is not open")
	ErrTournamentFull        = errors.New("tournament registration is full")
	ErrCheckInNotOpen        = errors.New("tournament check-in is not open")
	ErrNotEnoughParticipants = errors.New("at least 2 checked-in participants are required to start")

	// Сообщения чата показываются пользователю как есть.
	ErrMessageEmpty   = errors.New("Le message ne peut pas être vide")
	ErrMessageTooLong = errors.New("Le message est trop long")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrTeamMemberConflict   = errors.New("user is already a member of this team")
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")
	ErrUserMustBeCaptain      = errors.New("only the team captain can register the team")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("Utilisateur non trouvé")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamMemberNotFound  = errors.New("team member not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrPhaseNotFound       = errors.New("tournament phase not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Ошибки турниров
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentGameRequired            = errors.New("tournament game is required")
	ErrTournamentInvalidFormat           = errors.New("invalid tournament format")
	ErrTournamentInvalidCapacity         = errors.New("tournament max teams must be at least 2 and not below the registered count")
	ErrTournamentInvalidBestOf           = errors.New("best_of must be 1, 3 or 5")
	ErrTournamentInvalidMapPool          = errors.New("map pool entries must be unique and non-empty")
	ErrTournamentInvalidDates            = errors.New("check-in must open before the tournament starts")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentLocked                  = errors.New("tournament can no longer be modified")
	ErrTournamentNotDeletable            = errors.New("only draft or canceled tournaments can be deleted")
	ErrTournamentNotOngoing              = errors.New("tournament is not ongoing")

	// Ошибки фаз
	ErrPhaseNameRequired  = errors.New("phase name is required")
	ErrPhaseInvalidStatus = errors.New("phase status must be one of draft, ready, ongoing, completed")
	ErrPhaseInvalidOrder  = errors.New("phase order must be positive")

	// Ошибки участников
	ErrParticipantDisqualified = errors.New("participant is disqualified")
	ErrInvalidSeedOrder        = errors.New("seed order must be at least 1")

	// Ошибки матчей
	ErrMatchNotSchedulable = errors.New("match cannot be scheduled until both teams are known")
	ErrMatchNotReady       = errors.New("match does not have both teams yet")
	ErrMatchCompleted      = errors.New("match is already completed")
	ErrInvalidScore        = errors.New("scores must not be negative")
	ErrScoreTie            = errors.New("a completed match needs a winner: scores must differ")
	ErrMatchLocked         = errors.New("match result cannot change: a following match has already started")
	ErrInvalidBracketType  = errors.New("bracket type must be winners, losers or grand_final")

	// Ошибки вето
	ErrVetoInvalidAction  = errors.New("veto action type must be ban or pick")
	ErrVetoTeamNotInMatch = errors.New("team does not play in this match")
	ErrVetoMapRequired    = errors.New("map name is required")
	ErrVetoMapNotInPool   = errors.New("map is not in the tournament map pool")
	ErrVetoMapAlreadyUsed = errors.New("map has already been banned or picked")
	ErrVetoInvalidStep    = errors.New("veto step must not be negative")
)
