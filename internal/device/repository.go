package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
//
// Registration methods are idempotent: registering the same (device_code,
// name) twice creates at most one row and returns the existing record
// unchanged on repeat. State update methods never create records.
type Repository interface {
	// GetDeviceByCode retrieves a device by its code.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetDeviceByCode(ctx context.Context, code string) (*Device, error)

	// ListDevices retrieves all devices.
	ListDevices(ctx context.Context) ([]Device, error)

	// ListDevicesPage retrieves one page of devices plus the total count.
	// page is zero-based.
	ListDevicesPage(ctx context.Context, page, size int) ([]Device, int, error)

	// UpdateDevice applies an edit to a device's name/description.
	// Returns ErrDeviceNotFound if the device does not exist.
	UpdateDevice(ctx context.Context, code string, edit Edit) (*Device, error)

	// ListSensors retrieves all sensors belonging to a device.
	ListSensors(ctx context.Context, deviceCode string) ([]Sensor, error)

	// ListSensorsPage retrieves one page of a device's sensors plus the total count.
	ListSensorsPage(ctx context.Context, deviceCode string, page, size int) ([]Sensor, int, error)

	// GetSensor retrieves a sensor by device code and id.
	// Returns ErrSensorNotFound if no such sensor exists under the device.
	GetSensor(ctx context.Context, deviceCode string, id int64) (*Sensor, error)

	// UpdateSensor applies an edit to a sensor's display name/description.
	UpdateSensor(ctx context.Context, deviceCode string, id int64, edit Edit) (*Sensor, error)

	// RegisterSensorIfAbsent creates the sensor (and its device, if this is
	// the first registration under the code) inside a single transaction.
	// If a sensor with that name already exists it is returned unchanged.
	RegisterSensorIfAbsent(ctx context.Context, deviceCode string, reg SensorRegistration) (*Sensor, error)

	// UpdateSensorState sets the state of an existing sensor.
	// Returns ErrSensorNotFound if the sensor never registered.
	UpdateSensorState(ctx context.Context, deviceCode, name, state string) error

	// ListActuators retrieves all actuators belonging to a device.
	ListActuators(ctx context.Context, deviceCode string) ([]Actuator, error)

	// ListActuatorsPage retrieves one page of a device's actuators plus the total count.
	ListActuatorsPage(ctx context.Context, deviceCode string, page, size int) ([]Actuator, int, error)

	// GetActuator retrieves an actuator by device code and id.
	GetActuator(ctx context.Context, deviceCode string, id int64) (*Actuator, error)

	// GetActuatorByID retrieves an actuator by id alone (command publishing path).
	GetActuatorByID(ctx context.Context, id int64) (*Actuator, error)

	// UpdateActuator applies an edit to an actuator's display name/description.
	UpdateActuator(ctx context.Context, deviceCode string, id int64, edit Edit) (*Actuator, error)

	// RegisterActuatorIfAbsent creates the actuator (and its device, if
	// needed) inside a single transaction; idempotent like the sensor variant.
	RegisterActuatorIfAbsent(ctx context.Context, deviceCode string, reg ActuatorRegistration) (*Actuator, error)

	// UpdateActuatorState sets the state of an existing actuator after
	// checking 0 <= state <= level. Returns ErrActuatorNotFound or
	// ErrStateOutOfRange.
	UpdateActuatorState(ctx context.Context, deviceCode, name string, state int) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with foreign keys on.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sensorColumns = `id, device_code, name, name_shown, sensor_type, state, description, created_at, updated_at`

const actuatorColumns = `id, device_code, name, name_shown, level, state, description, created_at, updated_at`

// GetDeviceByCode retrieves a device by its code.
func (r *SQLiteRepository) GetDeviceByCode(ctx context.Context, code string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT code, name, description, created_at, updated_at FROM devices WHERE code = ?`, code)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by code: %w", err)
	}
	return d, nil
}

// ListDevices retrieves all devices ordered by code.
func (r *SQLiteRepository) ListDevices(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, description, created_at, updated_at FROM devices ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// ListDevicesPage retrieves one page of devices plus the total count.
func (r *SQLiteRepository) ListDevicesPage(ctx context.Context, page, size int) ([]Device, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting devices: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, description, created_at, updated_at
		 FROM devices ORDER BY code LIMIT ? OFFSET ?`, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("querying devices page: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, total, nil
}

// UpdateDevice applies an edit to a device's name/description.
func (r *SQLiteRepository) UpdateDevice(ctx context.Context, code string, edit Edit) (*Device, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices
		 SET name = COALESCE(?, name),
		     description = COALESCE(?, description),
		     updated_at = ?
		 WHERE code = ?`,
		nullableString(edit.Name), nullableString(edit.Description), now, code)
	if err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	} else if affected == 0 {
		return nil, ErrDeviceNotFound
	}
	return r.GetDeviceByCode(ctx, code)
}

// ListSensors retrieves all sensors belonging to a device.
func (r *SQLiteRepository) ListSensors(ctx context.Context, deviceCode string) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE device_code = ? ORDER BY name`, deviceCode)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()
	return collectSensors(rows)
}

// ListSensorsPage retrieves one page of a device's sensors plus the total count.
func (r *SQLiteRepository) ListSensorsPage(ctx context.Context, deviceCode string, page, size int) ([]Sensor, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sensors WHERE device_code = ?`, deviceCode).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sensors: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE device_code = ? ORDER BY name LIMIT ? OFFSET ?`,
		deviceCode, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("querying sensors page: %w", err)
	}
	defer rows.Close()

	sensors, err := collectSensors(rows)
	if err != nil {
		return nil, 0, err
	}
	return sensors, total, nil
}

// GetSensor retrieves a sensor by device code and id.
func (r *SQLiteRepository) GetSensor(ctx context.Context, deviceCode string, id int64) (*Sensor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE device_code = ? AND id = ?`, deviceCode, id)
	s, err := scanSensor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("querying sensor: %w", err)
	}
	return s, nil
}

// UpdateSensor applies an edit to a sensor's display name/description.
// Edit.Name maps to name_shown: the registered name is immutable identity.
func (r *SQLiteRepository) UpdateSensor(ctx context.Context, deviceCode string, id int64, edit Edit) (*Sensor, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE sensors
		 SET name_shown = COALESCE(?, name_shown),
		     description = COALESCE(?, description),
		     updated_at = ?
		 WHERE device_code = ? AND id = ?`,
		nullableString(edit.Name), nullableString(edit.Description), now, deviceCode, id)
	if err != nil {
		return nil, fmt.Errorf("updating sensor: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	} else if affected == 0 {
		return nil, ErrSensorNotFound
	}
	return r.GetSensor(ctx, deviceCode, id)
}

// RegisterSensorIfAbsent creates the sensor inside a single transaction,
// creating the owning device row if this is the first registration under
// the code. A sensor that already exists is returned unchanged: repeat
// registrations are side-effect-free.
func (r *SQLiteRepository) RegisterSensorIfAbsent(ctx context.Context, deviceCode string, reg SensorRegistration) (*Sensor, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := ensureDevice(ctx, tx, deviceCode); err != nil {
		return nil, err
	}

	// Existing sensor wins: re-registration does not overwrite fields.
	row := tx.QueryRowContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE device_code = ? AND name = ?`,
		deviceCode, reg.Name)
	existing, err := scanSensor(row)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing registration: %w", err)
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("querying sensor: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO sensors (device_code, name, sensor_type, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deviceCode, reg.Name, string(reg.Type), nullableString(reg.State), now, now)
	if err != nil {
		return nil, fmt.Errorf("inserting sensor: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading sensor id: %w", err)
	}

	row = tx.QueryRowContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE id = ?`, id)
	created, err := scanSensor(row)
	if err != nil {
		return nil, fmt.Errorf("reading back sensor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}
	return created, nil
}

// UpdateSensorState sets the state of an existing sensor.
func (r *SQLiteRepository) UpdateSensorState(ctx context.Context, deviceCode, name, state string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := tx.ExecContext(ctx,
		`UPDATE sensors SET state = ?, updated_at = ? WHERE device_code = ? AND name = ?`,
		state, now, deviceCode, name)
	if err != nil {
		return fmt.Errorf("updating sensor state: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	} else if affected == 0 {
		return ErrSensorNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state update: %w", err)
	}
	return nil
}

// ListActuators retrieves all actuators belonging to a device.
func (r *SQLiteRepository) ListActuators(ctx context.Context, deviceCode string) ([]Actuator, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE device_code = ? ORDER BY name`, deviceCode)
	if err != nil {
		return nil, fmt.Errorf("querying actuators: %w", err)
	}
	defer rows.Close()
	return collectActuators(rows)
}

// ListActuatorsPage retrieves one page of a device's actuators plus the total count.
func (r *SQLiteRepository) ListActuatorsPage(ctx context.Context, deviceCode string, page, size int) ([]Actuator, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actuators WHERE device_code = ?`, deviceCode).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting actuators: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE device_code = ? ORDER BY name LIMIT ? OFFSET ?`,
		deviceCode, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("querying actuators page: %w", err)
	}
	defer rows.Close()

	actuators, err := collectActuators(rows)
	if err != nil {
		return nil, 0, err
	}
	return actuators, total, nil
}

// GetActuator retrieves an actuator by device code and id.
func (r *SQLiteRepository) GetActuator(ctx context.Context, deviceCode string, id int64) (*Actuator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE device_code = ? AND id = ?`, deviceCode, id)
	a, err := scanActuator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActuatorNotFound
		}
		return nil, fmt.Errorf("querying actuator: %w", err)
	}
	return a, nil
}

// GetActuatorByID retrieves an actuator by id alone.
// Used by the command publisher to resolve the canonical actuator name.
func (r *SQLiteRepository) GetActuatorByID(ctx context.Context, id int64) (*Actuator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE id = ?`, id)
	a, err := scanActuator(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActuatorNotFound
		}
		return nil, fmt.Errorf("querying actuator by id: %w", err)
	}
	return a, nil
}

// UpdateActuator applies an edit to an actuator's display name/description.
// Edit.Name maps to name_shown: the registered name is immutable identity.
func (r *SQLiteRepository) UpdateActuator(ctx context.Context, deviceCode string, id int64, edit Edit) (*Actuator, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE actuators
		 SET name_shown = COALESCE(?, name_shown),
		     description = COALESCE(?, description),
		     updated_at = ?
		 WHERE device_code = ? AND id = ?`,
		nullableString(edit.Name), nullableString(edit.Description), now, deviceCode, id)
	if err != nil {
		return nil, fmt.Errorf("updating actuator: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	} else if affected == 0 {
		return nil, ErrActuatorNotFound
	}
	return r.GetActuator(ctx, deviceCode, id)
}

// RegisterActuatorIfAbsent creates the actuator inside a single transaction;
// idempotent like the sensor variant. An initial state outside [0, level]
// rejects the whole registration.
func (r *SQLiteRepository) RegisterActuatorIfAbsent(ctx context.Context, deviceCode string, reg ActuatorRegistration) (*Actuator, error) {
	if reg.Level < 0 {
		return nil, ErrInvalidLevel
	}
	if reg.State != nil && (*reg.State < 0 || *reg.State > reg.Level) {
		return nil, fmt.Errorf("%w: state %d not in [0, %d]", ErrStateOutOfRange, *reg.State, reg.Level)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := ensureDevice(ctx, tx, deviceCode); err != nil {
		return nil, err
	}

	// Existing actuator wins: re-registration does not overwrite fields,
	// including a changed level.
	row := tx.QueryRowContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE device_code = ? AND name = ?`,
		deviceCode, reg.Name)
	existing, err := scanActuator(row)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing registration: %w", err)
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("querying actuator: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO actuators (device_code, name, level, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deviceCode, reg.Name, reg.Level, nullableInt(reg.State), now, now)
	if err != nil {
		return nil, fmt.Errorf("inserting actuator: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading actuator id: %w", err)
	}

	row = tx.QueryRowContext(ctx,
		`SELECT `+actuatorColumns+` FROM actuators WHERE id = ?`, id)
	created, err := scanActuator(row)
	if err != nil {
		return nil, fmt.Errorf("reading back actuator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}
	return created, nil
}

// UpdateActuatorState sets the state of an existing actuator after checking
// the range invariant against the stored level. The check and the write run
// in one transaction so a concurrent edit cannot slip between them.
func (r *SQLiteRepository) UpdateActuatorState(ctx context.Context, deviceCode, name string, state int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var level int
	err = tx.QueryRowContext(ctx,
		`SELECT level FROM actuators WHERE device_code = ? AND name = ?`,
		deviceCode, name).Scan(&level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrActuatorNotFound
		}
		return fmt.Errorf("querying actuator level: %w", err)
	}

	if state < 0 || state > level {
		return fmt.Errorf("%w: state %d not in [0, %d]", ErrStateOutOfRange, state, level)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`UPDATE actuators SET state = ?, updated_at = ? WHERE device_code = ? AND name = ?`,
		state, now, deviceCode, name); err != nil {
		return fmt.Errorf("updating actuator state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state update: %w", err)
	}
	return nil
}

// ensureDevice creates the device row if it does not exist yet.
// Devices are created lazily by the first child registration.
func ensureDevice(ctx context.Context, tx *sql.Tx, code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO devices (code, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO NOTHING`,
		code, now, now); err != nil {
		return fmt.Errorf("ensuring device: %w", err)
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var name, description sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(&d.Code, &name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if name.Valid {
		d.Name = &name.String
	}
	if description.Valid {
		d.Description = &description.String
	}

	var err error
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

// scanSensor scans a row into a Sensor.
func scanSensor(scanner rowScanner) (*Sensor, error) {
	var s Sensor
	var nameShown, state, description sql.NullString
	var sensorType string
	var createdAt, updatedAt string

	if err := scanner.Scan(&s.ID, &s.DeviceCode, &s.Name, &nameShown, &sensorType,
		&state, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s.Type = SensorType(sensorType)
	if nameShown.Valid {
		s.NameShown = &nameShown.String
	}
	if state.Valid {
		s.State = &state.String
	}
	if description.Valid {
		s.Description = &description.String
	}

	var err error
	s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

// scanActuator scans a row into an Actuator.
func scanActuator(scanner rowScanner) (*Actuator, error) {
	var a Actuator
	var nameShown, description sql.NullString
	var state sql.NullInt64
	var createdAt, updatedAt string

	if err := scanner.Scan(&a.ID, &a.DeviceCode, &a.Name, &nameShown, &a.Level,
		&state, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if nameShown.Valid {
		a.NameShown = &nameShown.String
	}
	if state.Valid {
		v := int(state.Int64)
		a.State = &v
	}
	if description.Valid {
		a.Description = &description.String
	}

	var err error
	a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &a, nil
}

// collectSensors drains a rows result into a slice.
func collectSensors(rows *sql.Rows) ([]Sensor, error) {
	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, nil
}

// collectActuators drains a rows result into a slice.
func collectActuators(rows *sql.Rows) ([]Actuator, error) {
	var actuators []Actuator
	for rows.Next() {
		a, err := scanActuator(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning actuator: %w", err)
		}
		actuators = append(actuators, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuators: %w", err)
	}
	return actuators, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableInt returns a sql.NullInt64 for optional int pointers.
func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
