package mcpserver

// getFloat reads a numeric tool argument. JSON numbers arrive as float64.
func getFloat(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
