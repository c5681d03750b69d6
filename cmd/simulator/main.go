// Command simulator seeds a fleet manager instance with a demo warehouse
// fleet over the HTTP API: forklifts, operators, an in-progress operation, a
// critical maintenance order and refueling history. It registers its own
// admin account and authenticates every request it sends.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/frotadev/fleet-manager/internal/models"
)

var authToken string

func apiBaseURL() string {
	url := os.Getenv("API_URL")
	if url == "" {
		url = "http://localhost:8080/api"
	}
	return url
}

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// login registers the seeding account if needed and captures its token.
func login(apiURL string) error {
	creds := models.LoginRequest{
		Username: envOr("SEED_USERNAME", "seeder"),
		Password: envOr("SEED_PASSWORD", "seeder-password-1"),
	}

	register := models.RegisterRequest{
		Username: creds.Username,
		Email:    creds.Username + "@fleet.local",
		Password: creds.Password,
		FullName: "Fleet Seeder",
		Sector:   "Operations",
		Role:     models.RoleAdmin,
	}
	data, _ := json.Marshal(register)
	if resp, err := authorizedPost(apiURL+"/auth/register", bytes.NewBuffer(data)); err == nil {
		// Conflict means the account already exists, which is fine.
		resp.Body.Close()
	}

	data, _ = json.Marshal(creds)
	resp, err := authorizedPost(apiURL+"/auth/login", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}

	var loginResp models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	authToken = loginResp.Token
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func postEntity(apiURL, path, kind, id string, entity interface{}) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	resp, err := authorizedPost(apiURL+path, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s creation failed with status: %d", kind, resp.StatusCode)
	}
	log.WithFields(log.Fields{"kind": kind, "id": id}).Info("Seeded entity")
	return nil
}

func demoForklifts(now time.Time) []models.Forklift {
	return []models.Forklift{
		{
			ID: "E-001", Model: "8FGU25", Brand: "Toyota", Type: models.ForkliftGas,
			Status: models.ForkliftOperational, Capacity: 2500, ManufactureYear: 2021,
			AcquisitionDate: now.AddDate(-3, 0, 0), SerialNumber: "TY-8FGU25-4411",
			HourMeter: 3250, LastMaintenanceDate: now.AddDate(0, -1, 0),
			NextMaintenanceDate: now.AddDate(0, 2, 0), CurrentLocation: "Dock 3",
			Sector: "Receiving", HourlyCost: 48.5, Efficiency: 92, Availability: 96,
		},
		{
			ID: "E-002", Model: "H50FT", Brand: "Hyster", Type: models.ForkliftGas,
			Status: models.ForkliftOperational, Capacity: 2200, ManufactureYear: 2019,
			AcquisitionDate: now.AddDate(-5, 0, 0), SerialNumber: "HY-H50FT-0928",
			HourMeter: 7890, LastMaintenanceDate: now.AddDate(0, -2, 0),
			NextMaintenanceDate: now.AddDate(0, 1, 0), CurrentLocation: "Aisle 12",
			Sector: "Storage", HourlyCost: 52.0, Efficiency: 74, Availability: 81,
		},
		{
			ID: "E-003", Model: "E20XN", Brand: "Hyster", Type: models.ForkliftElectric,
			Status: models.ForkliftOperational, Capacity: 2000, ManufactureYear: 2023,
			AcquisitionDate: now.AddDate(-1, 0, 0), SerialNumber: "HY-E20XN-3377",
			HourMeter: 890, LastMaintenanceDate: now.AddDate(0, -3, 0),
			NextMaintenanceDate: now.AddDate(0, 3, 0), CurrentLocation: "Staging",
			Sector: "Shipping", HourlyCost: 39.0, Efficiency: 97, Availability: 99,
		},
		{
			ID: "E-004", Model: "8FBE20", Brand: "Toyota", Type: models.ForkliftReach,
			Status: models.ForkliftStopped, Capacity: 1800, ManufactureYear: 2018,
			AcquisitionDate: now.AddDate(-6, 0, 0), SerialNumber: "TY-8FBE20-1145",
			HourMeter: 10480, LastMaintenanceDate: now.AddDate(0, -6, 0),
			NextMaintenanceDate: now.AddDate(0, 0, 14), CurrentLocation: "Yard",
			Sector: "Storage", HourlyCost: 44.0, Efficiency: 68, Availability: 55,
			Notes: "Awaiting replacement mast bearings",
		},
	}
}

func demoOperators(now time.Time) []models.Operator {
	return []models.Operator{
		{
			ID: "OP-001", Name: "Carlos Silva", TaxID: "392.504.818-01",
			Email: "carlos.silva@fleet.local", Phone: "+55 11 98877-1020",
			Role: models.RoleForkliftOperator, AdmissionDate: now.AddDate(-4, 0, 0),
			Shift: "morning", Sector: "Receiving",
			Certifications: []models.Certification{
				{ID: "CERT-001", Type: models.CertificationNR11, Number: "NR11-88412",
					IssueDate: now.AddDate(-1, 0, 0), ExpirationDate: now.AddDate(1, 0, 0), Issuer: "SENAI"},
			},
			WorkedHours: 6240, Productivity: 91, Status: models.OperatorActive,
		},
		{
			ID: "OP-002", Name: "Maria Santos", TaxID: "274.663.901-56",
			Email: "maria.santos@fleet.local", Phone: "+55 11 97711-4455",
			Role: models.RoleForkliftOperator, AdmissionDate: now.AddDate(-2, 0, 0),
			Shift: "night", Sector: "Shipping",
			Certifications: []models.Certification{
				{ID: "CERT-002", Type: models.CertificationNR11, Number: "NR11-90310",
					IssueDate: now.AddDate(-2, 0, 0), ExpirationDate: now.AddDate(0, 0, 20), Issuer: "SENAI"},
			},
			WorkedHours: 3180, Productivity: 95, Status: models.OperatorActive,
		},
		{
			ID: "OP-003", Name: "João Pereira", TaxID: "118.220.547-33",
			Email: "joao.pereira@fleet.local", Phone: "+55 11 96650-8899",
			Role: models.RoleTechnician, AdmissionDate: now.AddDate(-7, 0, 0),
			Shift: "morning", Sector: "Maintenance",
			WorkedHours: 11020, Productivity: 87, Status: models.OperatorActive,
		},
	}
}

func demoOperation(now time.Time) models.Operation {
	return models.Operation{
		ID: "OPR-001", ForkliftID: "E-001", OperatorID: "OP-001",
		Type: models.OperationUnloading, Status: models.OperationInProgress,
		Priority: models.PriorityHigh, Sector: "Receiving", Location: "Dock 3",
		StartTime: now.Add(-25 * time.Minute), EstimatedDuration: 60,
	}
}

func demoMaintenanceOrder(now time.Time) models.MaintenanceOrder {
	return models.MaintenanceOrder{
		ID: "MO-001", ForkliftID: "E-002", Type: models.MaintenanceCorrective,
		Status: models.MaintenanceOpen, Priority: models.PriorityCritical,
		ProblemDescription: "Hydraulic pump losing pressure under load",
		TechnicianID:       "OP-003", OpenedDate: now.Add(-6 * time.Hour),
		Costs: models.MaintenanceCosts{Parts: 820, Labor: 340, Total: 1160},
	}
}

func demoFuelSupplies(now time.Time) []models.FuelSupply {
	supplies := make([]models.FuelSupply, 0, 5)
	for i := 0; i < 5; i++ {
		liters := 30 + rand.Float64()*25
		price := 6.2 + rand.Float64()*0.8
		hourMeter := 3000 + float64(i)*48
		supplies = append(supplies, models.FuelSupply{
			ID:               fmt.Sprintf("FS-%03d", i+1),
			ForkliftID:       "E-001",
			OperatorID:       "OP-001",
			Date:             now.AddDate(0, 0, -i),
			InitialHourMeter: hourMeter,
			FinalHourMeter:   hourMeter + 44,
			Liters:           liters,
			PricePerLiter:    price,
			TotalCost:        liters * price,
			Supplier:         "Posto Central",
			Location:         "Fuel bay 1",
		})
	}
	return supplies
}

func seed(apiURL string) error {
	now := time.Now().UTC()

	for _, f := range demoForklifts(now) {
		if err := postEntity(apiURL, "/forklifts", "forklift", f.ID, f); err != nil {
			return err
		}
	}
	for _, o := range demoOperators(now) {
		if err := postEntity(apiURL, "/operators", "operator", o.ID, o); err != nil {
			return err
		}
	}
	op := demoOperation(now)
	if err := postEntity(apiURL, "/operations", "operation", op.ID, op); err != nil {
		return err
	}
	mo := demoMaintenanceOrder(now)
	if err := postEntity(apiURL, "/maintenance-orders", "maintenance order", mo.ID, mo); err != nil {
		return err
	}
	for _, fs := range demoFuelSupplies(now) {
		if err := postEntity(apiURL, "/fuel-supplies", "fuel supply", fs.ID, fs); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	_ = godotenv.Load()
	apiURL := apiBaseURL()

	if err := login(apiURL); err != nil {
		log.WithError(err).Fatal("Failed to authenticate")
	}

	if err := seed(apiURL); err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.Info("Demo fleet seeded")
}
