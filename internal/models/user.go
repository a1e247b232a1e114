// Package models содержит доменную модель пользователя: учётные данные,
// ссылки на загруженные файлы и снимок для серверной сессии.
package models

// MaxDocuments максимальное число документов у пользователя.
const MaxDocuments = 3

// User представляет зарегистрированного пользователя системы.
//
// ID назначается хранилищем один раз при создании и не меняется.
// Password всегда хранит bcrypt-хеш, открытый пароль в хранилище не попадает.
type User struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Gender     string   `json:"gender"`
	Password   string   `json:"password,omitempty"`
	ProfilePic *string  `json:"profilePic"`
	Documents  []string `json:"documents"`
}

// Public возвращает копию пользователя без хеша пароля.
func (u User) Public() *User {
	u.Password = ""
	if u.Documents == nil {
		u.Documents = []string{}
	} else {
		u.Documents = append([]string(nil), u.Documents...)
	}
	if u.ProfilePic != nil {
		pic := *u.ProfilePic
		u.ProfilePic = &pic
	}
	return &u
}

// Snapshot возвращает снимок пользователя для сессии. Хеш пароля не копируется.
func (u User) Snapshot() Snapshot {
	pub := u.Public()
	return Snapshot{
		UserID:     pub.ID,
		Username:   pub.Username,
		Email:      pub.Email,
		Gender:     pub.Gender,
		ProfilePic: pub.ProfilePic,
		Documents:  pub.Documents,
	}
}

// Draft пользовательский ввод при регистрации, ещё не прошедший валидацию.
type Draft struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Gender   string `json:"gender" validate:"required"`
}

// UserUpdate частичное обновление профиля. nil-поля не меняются.
// Password к моменту записи в хранилище уже должен быть хешем.
type UserUpdate struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Gender   *string `json:"gender,omitempty" validate:"omitempty,min=1"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,maxbytes=72"`
}

// IsEmpty сообщает, что обновлять нечего.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.Gender == nil && u.Password == nil
}

// Apply применяет заданные поля к пользователю.
func (u UserUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Gender != nil {
		user.Gender = *u.Gender
	}
	if u.Password != nil {
		user.Password = *u.Password
	}
}

// Snapshot денормализованная копия пользователя в серверной сессии.
type Snapshot struct {
	UserID     string   `json:"userId"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Gender     string   `json:"gender"`
	ProfilePic *string  `json:"profilePic"`
	Documents  []string `json:"documents"`
}
