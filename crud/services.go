package crud

import "gorm.io/gorm"

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db *gorm.DB
	User *UserService
	Freet *FreetService
	Bookmark *BookmarkService
	Like *LikeService
	Event *EventService
	ReaderMode *ReaderModeService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper, hmacKey string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper, hmacKey)
		return nil
	}
}

// WithFreet wraps the constructor of FreetService, NewFreetService.
func WithFreet() ServicesConfig {
	return func(s *Services) error {
		s.Freet = NewFreetService(s.db)
		return nil
	}
}

// WithBookmark wraps the constructor of BookmarkService, NewBookmarkService.
func WithBookmark() ServicesConfig {
	return func(s *Services) error {
		s.Bookmark = NewBookmarkService(s.db)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		s.Like = NewLikeService(s.db)
		return nil
	}
}

// WithEvent wraps the constructor of EventService, NewEventService.
func WithEvent() ServicesConfig {
	return func(s *Services) error {
		s.Event = NewEventService(s.db)
		return nil
	}
}

// WithReaderMode wraps the constructor of ReaderModeService, NewReaderModeService.
func WithReaderMode() ServicesConfig {
	return func(s *Services) error {
		s.ReaderMode = NewReaderModeService(s.db)
		return nil
	}
}
