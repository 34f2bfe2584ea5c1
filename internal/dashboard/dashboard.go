package dashboard

// Payload is the body every dashboard returns.
type Payload struct {
	Message string `json:"message"`
}

func AdminDashboard() Payload {
	return Payload{Message: "Welcome to the Admin Dashboard"}
}

func ManagerDashboard() Payload {
	return Payload{Message: "Welcome to the Manager Dashboard"}
}

func EmployeeDashboard() Payload {
	return Payload{Message: "Welcome to the Employee Dashboard"}
}
