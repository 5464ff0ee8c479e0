package adapters

import (
	"time"

	authentity "appt_calendar/internal/feature/auth/domain/entity"
	"appt_calendar/internal/feature/appointments/domain/entity"
)

// AppointmentModel is the gorm model of the appointments table.
// Owner only declares the foreign key; it is never preloaded or written.
type AppointmentModel struct {
	ID          uint            `gorm:"primaryKey"`
	OwnerID     uint            `gorm:"column:user_id;index:idx_appointments_owner_start,priority:1;not null"`
	Owner       authentity.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Title       string          `gorm:"size:255;not null"`
	Start       time.Time       `gorm:"column:start_at;index:idx_appointments_owner_start,priority:2;not null"`
	End         time.Time       `gorm:"column:end_at;not null"`
	AllDay      bool            `gorm:"not null"`
	Location    string          `gorm:"size:255"`
	Description string          `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AppointmentModel) TableName() string {
	return "appointments"
}

func (m *AppointmentModel) ToEntity() *entity.Appointment {
	return &entity.Appointment{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Start:       m.Start,
		End:         m.End,
		AllDay:      m.AllDay,
		Location:    m.Location,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func AppointmentModelFromEntity(a *entity.Appointment) *AppointmentModel {
	return &AppointmentModel{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Title:       a.Title,
		Start:       a.Start,
		End:         a.End,
		AllDay:      a.AllDay,
		Location:    a.Location,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
