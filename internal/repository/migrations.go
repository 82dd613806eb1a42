package repository

import (
	"context"
	"fmt"
	"log/slog"
)

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Querier) error {
	slog.InfoContext(ctx, "running database migrations")

	migrations := []string{
		createAircraftTable,
		createClassTable,
		createSeatTable,
		createFlightRouteTable,
		createFlightTable,
		createFlightDepartureIndex,
		createPilotTable,
		createFlightAttendantTable,
		createPilotsOnFlightsTable,
		createAttendantsOnFlightsTable,
		createManagerTable,
		createCustomerTable,
		createRegisteredCustomerTable,
		createCustomerPhoneTable,
		createReservationsTable,
		createSeatsInFlightsTable,
		createSeatsInReservationTable,
		createActiveSeatClaimIndex,
		seedRoutes,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.InfoContext(ctx, "database migrations completed", "steps", len(migrations))
	return nil
}

// activeSeatClaimIndex keeps a seat of a flight in at most one active reservation.
const activeSeatClaimIndex = "seats_in_reservation_active_seat_uq"

const reservationsPKey = "reservations_pkey"

const flightPKey = "flight_pkey"

const createAircraftTable = `
CREATE TABLE IF NOT EXISTS aircraft (
    aircraft_id BIGINT PRIMARY KEY,
    size VARCHAR(10) NOT NULL CHECK (size IN ('SMALL', 'LARGE')),
    manufacturer VARCHAR(50) NOT NULL,
    purchase_date DATE NOT NULL
);`

const createClassTable = `
CREATE TABLE IF NOT EXISTS class (
    aircraft_id BIGINT NOT NULL REFERENCES aircraft (aircraft_id),
    class_type VARCHAR(10) NOT NULL CHECK (class_type IN ('ECONOMY', 'BUSINESS')),
    number_of_rows INTEGER NOT NULL CHECK (number_of_rows > 0),
    number_of_columns INTEGER NOT NULL CHECK (number_of_columns > 0),
    PRIMARY KEY (aircraft_id, class_type)
);`

const createSeatTable = `
CREATE TABLE IF NOT EXISTS seat (
    aircraft_id BIGINT NOT NULL,
    class_type VARCHAR(10) NOT NULL,
    seat_row INTEGER NOT NULL,
    seat_column INTEGER NOT NULL,
    PRIMARY KEY (aircraft_id, class_type, seat_row, seat_column),
    FOREIGN KEY (aircraft_id, class_type) REFERENCES class (aircraft_id, class_type)
);`

const createFlightRouteTable = `
CREATE TABLE IF NOT EXISTS flight_route (
    origin_airport VARCHAR(10) NOT NULL,
    destination_airport VARCHAR(10) NOT NULL,
    flight_duration INTEGER NOT NULL CHECK (flight_duration > 0),
    PRIMARY KEY (origin_airport, destination_airport)
);`

const createFlightTable = `
CREATE TABLE IF NOT EXISTS flight (
    flight_number INTEGER NOT NULL CHECK (flight_number BETWEEN 0 AND 9999),
    aircraft_id BIGINT NOT NULL REFERENCES aircraft (aircraft_id),
    origin_airport VARCHAR(10) NOT NULL,
    destination_airport VARCHAR(10) NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'CANCELED')),
    CONSTRAINT flight_pkey PRIMARY KEY (flight_number),
    FOREIGN KEY (origin_airport, destination_airport) REFERENCES flight_route (origin_airport, destination_airport)
);`

const createFlightDepartureIndex = `
CREATE INDEX IF NOT EXISTS idx_flight_departure ON flight (departure_time);`

const createPilotTable = `
CREATE TABLE IF NOT EXISTS pilot (
    id_number BIGINT PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    city VARCHAR(100),
    street VARCHAR(100),
    house_number INTEGER,
    phone_number VARCHAR(30),
    employment_start_date DATE,
    long_flight_certification BOOLEAN NOT NULL DEFAULT FALSE
);`

const createFlightAttendantTable = `
CREATE TABLE IF NOT EXISTS flight_attendant (
    id_number BIGINT PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    city VARCHAR(100),
    street VARCHAR(100),
    house_number INTEGER,
    phone_number VARCHAR(30),
    employment_start_date DATE,
    long_flight_certification BOOLEAN NOT NULL DEFAULT FALSE
);`

const createPilotsOnFlightsTable = `
CREATE TABLE IF NOT EXISTS pilots_on_flights (
    id_number BIGINT NOT NULL REFERENCES pilot (id_number),
    flight_number INTEGER NOT NULL REFERENCES flight (flight_number),
    PRIMARY KEY (id_number, flight_number)
);`

const createAttendantsOnFlightsTable = `
CREATE TABLE IF NOT EXISTS flight_attendants_on_flights (
    id_number BIGINT NOT NULL REFERENCES flight_attendant (id_number),
    flight_number INTEGER NOT NULL REFERENCES flight (flight_number),
    PRIMARY KEY (id_number, flight_number)
);`

const createManagerTable = `
CREATE TABLE IF NOT EXISTS manager (
    id_number BIGINT PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    password VARCHAR(255) NOT NULL
);`

const createCustomerTable = `
CREATE TABLE IF NOT EXISTS customer (
    email VARCHAR(255) PRIMARY KEY,
    first_name VARCHAR(100),
    last_name VARCHAR(100)
);`

const createRegisteredCustomerTable = `
CREATE TABLE IF NOT EXISTS registered_customer (
    email VARCHAR(255) PRIMARY KEY REFERENCES customer (email),
    password VARCHAR(255) NOT NULL,
    passport_number VARCHAR(50) NOT NULL UNIQUE,
    date_of_birth DATE,
    registration_date DATE NOT NULL DEFAULT CURRENT_DATE
);`

const createCustomerPhoneTable = `
CREATE TABLE IF NOT EXISTS customer_phone_number (
    email VARCHAR(255) NOT NULL REFERENCES customer (email),
    phone_number VARCHAR(30) NOT NULL,
    PRIMARY KEY (email, phone_number)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    reservation_code INTEGER NOT NULL CHECK (reservation_code BETWEEN 1000 AND 9999),
    reservation_status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE'
        CHECK (reservation_status IN ('ACTIVE', 'CUSTOMER_CANCELED', 'SYSTEM_CANCELED')),
    reservation_date DATE NOT NULL DEFAULT CURRENT_DATE,
    total_payment_cents BIGINT NOT NULL DEFAULT 0,
    email VARCHAR(255) NOT NULL REFERENCES customer (email),
    flight_number INTEGER NOT NULL REFERENCES flight (flight_number),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT reservations_pkey PRIMARY KEY (reservation_code)
);`

const createSeatsInFlightsTable = `
CREATE TABLE IF NOT EXISTS seats_in_flights (
    flight_number INTEGER NOT NULL REFERENCES flight (flight_number),
    aircraft_id BIGINT NOT NULL,
    class_type VARCHAR(10) NOT NULL,
    seat_row INTEGER NOT NULL,
    seat_column INTEGER NOT NULL,
    price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
    PRIMARY KEY (flight_number, class_type, seat_row, seat_column),
    FOREIGN KEY (aircraft_id, class_type, seat_row, seat_column)
        REFERENCES seat (aircraft_id, class_type, seat_row, seat_column)
);`

const createSeatsInReservationTable = `
CREATE TABLE IF NOT EXISTS seats_in_reservation (
    reservation_code INTEGER NOT NULL REFERENCES reservations (reservation_code),
    flight_number INTEGER NOT NULL,
    aircraft_id BIGINT NOT NULL,
    class_type VARCHAR(10) NOT NULL,
    seat_row INTEGER NOT NULL,
    seat_column INTEGER NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (reservation_code, class_type, seat_row, seat_column),
    FOREIGN KEY (flight_number, class_type, seat_row, seat_column)
        REFERENCES seats_in_flights (flight_number, class_type, seat_row, seat_column)
);`

const createActiveSeatClaimIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS seats_in_reservation_active_seat_uq
    ON seats_in_reservation (flight_number, class_type, seat_row, seat_column)
    WHERE active;`

const seedRoutes = `
INSERT INTO flight_route (origin_airport, destination_airport, flight_duration) VALUES
    ('TLV', 'ATH', 120), ('ATH', 'TLV', 120),
    ('TLV', 'FCO', 210), ('FCO', 'TLV', 220),
    ('TLV', 'LHR', 330), ('LHR', 'TLV', 320),
    ('TLV', 'JFK', 720), ('JFK', 'TLV', 660),
    ('TLV', 'BKK', 660), ('BKK', 'TLV', 690),
    ('ATH', 'FCO', 110), ('FCO', 'ATH', 105)
ON CONFLICT DO NOTHING;`
