package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "tenant":
		handleTenant(args)
	case "customer":
		handleCustomer(args)
	case "user":
		handleUser(args)
	case "dashboard":
		showDashboard(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm auth <signup|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "signup":
		signup(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleTenant(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm tenant <use|current>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "use":
		if len(args) < 2 {
			fmt.Println("Usage: tenantcrm tenant use <tenant-id>")
			return
		}
		saveTenant(args[1])
		fmt.Printf("✓ Active tenant: %s\n", args[1])
	case "current":
		tenant := loadTenant()
		if tenant == "" {
			fmt.Println("No active tenant. Run: tenantcrm tenant use <tenant-id>")
			return
		}
		fmt.Println(tenant)
	default:
		fmt.Printf("unknown tenant command: %s\n", subCmd)
	}
}

func handleCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm customer <list|get|create|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listCustomers(args[1:])
	case "get":
		getCustomer(args[1:])
	case "create":
		createCustomer(args[1:])
	case "delete":
		deleteCustomer(args[1:])
	default:
		fmt.Printf("unknown customer command: %s\n", subCmd)
	}
}

func handleUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm user <list|invite>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listMembers(args[1:])
	case "invite":
		inviteMember(args[1:])
	default:
		fmt.Printf("unknown user command: %s\n", subCmd)
	}
}

// Auth commands
func signup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (min 8 characters)")
	tenantName := fs.String("tenant-name", "", "name of the tenant to create")
	tenantDomain := fs.String("tenant-domain", "", "domain of the tenant to create")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}
	if *tenantName == "" || *tenantDomain == "" {
		fmt.Println("Error: tenant-name and tenant-domain are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":        *email,
		"password":     *password,
		"tenantName":   *tenantName,
		"tenantDomain": *tenantDomain,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/signup", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == http.StatusCreated {
		fmt.Printf("✓ Account created: %s\n", *email)
		saveSession(result)
		printTenants(result)
	} else {
		fmt.Printf("✗ Signup failed: %v\n", result["error"])
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == http.StatusOK {
		fmt.Printf("✓ Logged in as: %s\n", *email)
		saveSession(result)
		printTenants(result)
	} else {
		fmt.Printf("✗ Login failed: %v\n", result["error"])
	}
}

func logout() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/auth/logout", nil)
	addAuthHeader(req)
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	tenant := loadTenant()
	if tenant == "" {
		tenant = "(none)"
	}
	fmt.Printf("✓ Logged in (tenant: %s)\n", tenant)
}

// Customer commands
func listCustomers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/customers", nil)
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printAPIError(resp)
		return
	}

	var customers []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&customers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCOMPANY\tEMAIL")
	for _, c := range customers {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", c["id"], c["name"], c["status"], c["company"], c["email"])
	}
	w.Flush()
}

func getCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm customer get <customer-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/customers/"+args[0], nil)
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printAPIError(resp)
		return
	}

	var customer map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&customer)
	out, _ := json.MarshalIndent(customer, "", "  ")
	fmt.Println(string(out))
}

func createCustomer(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")
	company := fs.String("company", "", "customer company")
	status := fs.String("status", "", "status (lead, prospect, active, inactive)")

	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: name is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name}
	if *email != "" {
		payload["email"] = *email
	}
	if *phone != "" {
		payload["phone"] = *phone
	}
	if *company != "" {
		payload["company"] = *company
	}
	if *status != "" {
		payload["status"] = *status
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/customers", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		printAPIError(resp)
		return
	}

	var customer map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&customer)
	fmt.Printf("✓ Customer created: %v\n", customer["id"])
}

func deleteCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tenantcrm customer delete <customer-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/customers/"+args[0], nil)
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printAPIError(resp)
		return
	}
	fmt.Println("✓ Customer deleted")
}

// User commands
func listMembers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/users", nil)
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printAPIError(resp)
		return
	}

	var members []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&members)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE")
	for _, m := range members {
		fmt.Fprintf(w, "%v\t%v\t%v\n", m["id"], m["email"], m["role"])
	}
	w.Flush()
}

func inviteMember(args []string) {
	fs := flag.NewFlagSet("invite", flag.ExitOnError)
	email := fs.String("email", "", "email to invite")
	role := fs.String("role", "", "role (admin, manager, sales, support)")

	fs.Parse(args)

	if *email == "" || *role == "" {
		fmt.Println("Error: email and role are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "role": *role}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/users/invite", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		printAPIError(resp)
		return
	}
	fmt.Printf("✓ Invited %s as %s\n", *email, *role)
}

// Dashboard
func showDashboard(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/analytics/dashboard", nil)
	addAuthHeader(req)
	addTenantHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printAPIError(resp)
		return
	}

	var dash map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&dash)
	out, _ := json.MarshalIndent(dash, "", "  ")
	fmt.Println(string(out))
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("TENANTCRM_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return home + "/.tenantcrm"
}

func tokenFile() string {
	return configDir() + "/token"
}

func tenantFile() string {
	return configDir() + "/tenant"
}

func saveSession(result map[string]interface{}) {
	session, ok := result["session"].(map[string]interface{})
	if !ok {
		return
	}
	if token, ok := session["token"].(string); ok {
		os.MkdirAll(configDir(), 0700)
		os.WriteFile(tokenFile(), []byte(token), 0600)
	}
}

func printTenants(result map[string]interface{}) {
	tenants, ok := result["tenants"].([]interface{})
	if !ok || len(tenants) == 0 {
		return
	}
	fmt.Println("Tenants:")
	for _, t := range tenants {
		m, ok := t.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("  %v (%v)\n", m["tenant_id"], m["role"])
	}
	if len(tenants) == 1 {
		if m, ok := tenants[0].(map[string]interface{}); ok {
			if id, ok := m["tenant_id"].(string); ok {
				saveTenant(id)
				fmt.Printf("✓ Active tenant: %s\n", id)
			}
		}
	}
}

func saveTenant(tenantID string) {
	os.MkdirAll(configDir(), 0700)
	os.WriteFile(tenantFile(), []byte(tenantID), 0600)
}

func loadTenant() string {
	data, _ := os.ReadFile(tenantFile())
	return string(data)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func addTenantHeader(req *http.Request) {
	if tenant := os.Getenv("TENANTCRM_TENANT"); tenant != "" {
		req.Header.Set("X-Tenant-Id", tenant)
		return
	}
	if tenant := loadTenant(); tenant != "" {
		req.Header.Set("X-Tenant-Id", tenant)
	}
}

func printAPIError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result["error"])
}

func printUsage() {
	fmt.Print(`TenantCRM CLI

Usage:
  tenantcrm <command> [options]

Commands:
  auth       Authentication (signup, login, logout, who)
  tenant     Active tenant selection (use, current)
  customer   Customer operations (list, get, create, delete)
  user       Team member operations (list, invite) - admin access required
  dashboard  Show dashboard metrics for the active tenant
  help       Show this help message

Environment Variables:
  TENANTCRM_API     API endpoint (default: http://localhost:8080/api)
  TENANTCRM_TENANT  Tenant ID override for X-Tenant-Id

Examples:
  tenantcrm auth signup -email admin@acme.com -password secret123 -tenant-name Acme -tenant-domain acme.com
  tenantcrm auth login -email admin@acme.com -password secret123
  tenantcrm customer list
  tenantcrm customer create -name "Jane Doe" -company Initech -status lead
  tenantcrm dashboard
`)
}
