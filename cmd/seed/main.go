package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"appt_calendar/internal/app/seed"
	apptadapters "appt_calendar/internal/feature/appointments/adapters"
	apptusecase "appt_calendar/internal/feature/appointments/usecase"
	authadapters "appt_calendar/internal/feature/auth/adapters"
	"appt_calendar/internal/feature/auth/domain/entity"
	authusecase "appt_calendar/internal/feature/auth/usecase"
	"appt_calendar/internal/platform/db"
	jwtmw "appt_calendar/internal/platform/jwt"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	gdb, err := db.Open(db.LoadConfigFromEnv())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close(gdb) }()

	if err := db.AutoMigrate(gdb, &entity.User{}, &authadapters.SessionModel{}, &apptadapters.AppointmentModel{}); err != nil {
		log.Fatalf("database: %v", err)
	}

	// Seeding never issues tokens; the generator only satisfies the constructor.
	users := authusecase.NewAuthUsecase(authadapters.NewUserGorm(gdb), authadapters.NewSessionGorm(gdb),
		jwtmw.NewGenerator("unused", time.Hour), authusecase.Config{})
	appointments := apptusecase.NewAppointmentUsecase(apptadapters.NewAppointmentGorm(gdb))

	user, err := seed.Run(context.Background(), users, appointments, time.Now())
	switch {
	case errors.Is(err, seed.ErrAlreadySeeded):
		slog.Info("nothing to do", "email", seed.DemoEmail)
	case err != nil:
		log.Fatalf("seed: %v", err)
	default:
		slog.Info("seeded demo data", "email", user.Email, "user_id", user.ID)
	}
}
