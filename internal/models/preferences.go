package models

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type ViewType string

const (
	ViewList     ViewType = "list"
	ViewKanban   ViewType = "kanban"
	ViewCalendar ViewType = "calendar"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type NotificationPreferences struct {
	Email bool `json:"email" yaml:"email"`
	Push  bool `json:"push" yaml:"push"`
	InApp bool `json:"inApp" yaml:"inApp"`
}

type UserPreferences struct {
	Theme         Theme                   `json:"theme" yaml:"theme" validate:"oneof=light dark"`
	Language      string                  `json:"language" yaml:"language" validate:"min=1"`
	Notifications NotificationPreferences `json:"notifications" yaml:"notifications"`
	DefaultView   ViewType                `json:"defaultView" yaml:"defaultView" validate:"oneof=list kanban calendar"`
	ItemsPerPage  int                     `json:"itemsPerPage" yaml:"itemsPerPage" validate:"min=1,max=100"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:    ThemeLight,
		Language: "en",
		Notifications: NotificationPreferences{
			Email: true,
			Push:  true,
			InApp: true,
		},
		DefaultView:  ViewList,
		ItemsPerPage: DefaultPageSize,
	}
}
