package device_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/infrastructure/database"
	_ "github.com/iothome/core/migrations"
)

// setupRepo opens a fresh migrated database in a temp directory.
func setupRepo(t *testing.T) *device.SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     false,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	return device.NewSQLiteRepository(db.DB)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestRegisterSensorIfAbsent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	s, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name:  "temp",
		Type:  device.SensorTypeTemperature,
		State: strPtr("21.5"),
	})
	if err != nil {
		t.Fatalf("registering sensor: %v", err)
	}
	if s.ID == 0 {
		t.Error("expected non-zero sensor id")
	}
	if s.DeviceCode != "kitchen-01" {
		t.Errorf("device code = %q, want kitchen-01", s.DeviceCode)
	}
	if s.State == nil || *s.State != "21.5" {
		t.Errorf("state = %v, want 21.5", s.State)
	}

	// Registration creates the owning device lazily.
	d, err := repo.GetDeviceByCode(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("getting device: %v", err)
	}
	if d.Code != "kitchen-01" {
		t.Errorf("device code = %q, want kitchen-01", d.Code)
	}
}

func TestRegisterSensorIfAbsentIdempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name:  "temp",
		Type:  device.SensorTypeTemperature,
		State: strPtr("21.5"),
	})
	if err != nil {
		t.Fatalf("registering sensor: %v", err)
	}

	// Repeat with different fields: existing record wins.
	second, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name:  "temp",
		Type:  device.SensorTypeHumidity,
		State: strPtr("99"),
	})
	if err != nil {
		t.Fatalf("re-registering sensor: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-registration created a new row: id %d != %d", second.ID, first.ID)
	}
	if second.Type != device.SensorTypeTemperature {
		t.Errorf("type = %q, want original temperature", second.Type)
	}
	if second.State == nil || *second.State != "21.5" {
		t.Errorf("state = %v, want original 21.5", second.State)
	}

	sensors, err := repo.ListSensors(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("listing sensors: %v", err)
	}
	if len(sensors) != 1 {
		t.Errorf("sensor count = %d, want 1", len(sensors))
	}
}

func TestRegisterActuatorIfAbsent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a, err := repo.RegisterActuatorIfAbsent(ctx, "living-01", device.ActuatorRegistration{
		Name:  "dimmer",
		Level: 100,
		State: intPtr(40),
	})
	if err != nil {
		t.Fatalf("registering actuator: %v", err)
	}
	if a.Level != 100 {
		t.Errorf("level = %d, want 100", a.Level)
	}
	if a.State == nil || *a.State != 40 {
		t.Errorf("state = %v, want 40", a.State)
	}

	// Same name on a different device is a distinct actuator.
	other, err := repo.RegisterActuatorIfAbsent(ctx, "living-02", device.ActuatorRegistration{
		Name:  "dimmer",
		Level: 1,
	})
	if err != nil {
		t.Fatalf("registering on second device: %v", err)
	}
	if other.ID == a.ID {
		t.Error("actuators on different devices share an id")
	}
}

func TestRegisterActuatorRejectsBadInitialState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		level int
		state *int
		want  error
	}{
		{"negative level", -1, nil, device.ErrInvalidLevel},
		{"state above level", 1, intPtr(2), device.ErrStateOutOfRange},
		{"negative state", 10, intPtr(-1), device.ErrStateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.RegisterActuatorIfAbsent(ctx, "dev-01", device.ActuatorRegistration{
				Name:  "switch",
				Level: tt.level,
				State: tt.state,
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateSensorState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name: "motion",
		Type: device.SensorTypeMotion,
	}); err != nil {
		t.Fatalf("registering sensor: %v", err)
	}

	if err := repo.UpdateSensorState(ctx, "kitchen-01", "motion", "detected"); err != nil {
		t.Fatalf("updating state: %v", err)
	}

	sensors, err := repo.ListSensors(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("listing sensors: %v", err)
	}
	if len(sensors) != 1 || sensors[0].State == nil || *sensors[0].State != "detected" {
		t.Errorf("sensors = %+v, want single sensor with state detected", sensors)
	}
}

func TestUpdateSensorStateUnregistered(t *testing.T) {
	repo := setupRepo(t)

	err := repo.UpdateSensorState(context.Background(), "ghost", "temp", "1")
	if !errors.Is(err, device.ErrSensorNotFound) {
		t.Errorf("error = %v, want ErrSensorNotFound", err)
	}
}

func TestUpdateActuatorState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.RegisterActuatorIfAbsent(ctx, "living-01", device.ActuatorRegistration{
		Name:  "dimmer",
		Level: 100,
	}); err != nil {
		t.Fatalf("registering actuator: %v", err)
	}

	tests := []struct {
		name  string
		state int
		want  error
	}{
		{"lower bound", 0, nil},
		{"upper bound", 100, nil},
		{"above level", 101, device.ErrStateOutOfRange},
		{"negative", -1, device.ErrStateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateActuatorState(ctx, "living-01", "dimmer", tt.state)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := repo.UpdateActuatorState(ctx, "living-01", "missing", 1); !errors.Is(err, device.ErrActuatorNotFound) {
		t.Errorf("error = %v, want ErrActuatorNotFound", err)
	}
}

func TestGetActuatorByID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.RegisterActuatorIfAbsent(ctx, "living-01", device.ActuatorRegistration{
		Name:  "relay",
		Level: 1,
	})
	if err != nil {
		t.Fatalf("registering actuator: %v", err)
	}

	a, err := repo.GetActuatorByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("getting actuator by id: %v", err)
	}
	if a.Name != "relay" || a.DeviceCode != "living-01" {
		t.Errorf("got %+v, want relay on living-01", a)
	}

	if _, err := repo.GetActuatorByID(ctx, 9999); !errors.Is(err, device.ErrActuatorNotFound) {
		t.Errorf("error = %v, want ErrActuatorNotFound", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name: "temp",
		Type: device.SensorTypeTemperature,
	}); err != nil {
		t.Fatalf("registering sensor: %v", err)
	}

	d, err := repo.UpdateDevice(ctx, "kitchen-01", device.Edit{
		Name:        strPtr("Kitchen node"),
		Description: strPtr("ESP32 by the window"),
	})
	if err != nil {
		t.Fatalf("updating device: %v", err)
	}
	if d.Name == nil || *d.Name != "Kitchen node" {
		t.Errorf("name = %v, want Kitchen node", d.Name)
	}

	// Nil fields stay untouched.
	d, err = repo.UpdateDevice(ctx, "kitchen-01", device.Edit{Description: strPtr("moved")})
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if d.Name == nil || *d.Name != "Kitchen node" {
		t.Errorf("partial update cleared name: %v", d.Name)
	}
	if d.Description == nil || *d.Description != "moved" {
		t.Errorf("description = %v, want moved", d.Description)
	}

	if _, err := repo.UpdateDevice(ctx, "ghost", device.Edit{Name: strPtr("x")}); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestListDevicesPage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	codes := []string{"a-01", "b-01", "c-01", "d-01", "e-01"}
	for _, code := range codes {
		if _, err := repo.RegisterSensorIfAbsent(ctx, code, device.SensorRegistration{
			Name: "temp",
			Type: device.SensorTypeTemperature,
		}); err != nil {
			t.Fatalf("registering sensor on %s: %v", code, err)
		}
	}

	page, total, err := repo.ListDevicesPage(ctx, 0, 2)
	if err != nil {
		t.Fatalf("listing first page: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].Code != "a-01" || page[1].Code != "b-01" {
		t.Errorf("first page = %+v, want a-01, b-01", page)
	}

	page, _, err = repo.ListDevicesPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("listing last page: %v", err)
	}
	if len(page) != 1 || page[0].Code != "e-01" {
		t.Errorf("last page = %+v, want e-01", page)
	}
}

func TestUpdateSensorKeepsRegisteredName(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.RegisterSensorIfAbsent(ctx, "kitchen-01", device.SensorRegistration{
		Name: "temp",
		Type: device.SensorTypeTemperature,
	})
	if err != nil {
		t.Fatalf("registering sensor: %v", err)
	}

	s, err := repo.UpdateSensor(ctx, "kitchen-01", created.ID, device.Edit{
		Name: strPtr("Window temperature"),
	})
	if err != nil {
		t.Fatalf("updating sensor: %v", err)
	}
	if s.Name != "temp" {
		t.Errorf("registered name changed to %q", s.Name)
	}
	if s.NameShown == nil || *s.NameShown != "Window temperature" {
		t.Errorf("name_shown = %v, want Window temperature", s.NameShown)
	}
}
