package domain

// BusinessProfile holds the branding shown by the widget. It is loaded once
// from configuration, read-only during a session, and replaceable through the
// admin panel; a replacement takes effect on the next render.
type BusinessProfile struct {
	Nombre      string   `json:"nombre"`
	Emoji       string   `json:"emoji"`
	Tagline     string   `json:"tagline"`
	LogoPath    string   `json:"-"`
	Primario    string   `json:"color_primario"`
	Secundario  string   `json:"color_secundario"`
	FondoUser   string   `json:"fondo_usuario"`
	FondoBot    string   `json:"fondo_bot"`
	Bienvenida  string   `json:"bienvenida"`
	Sugerencias []string `json:"sugerencias"`
	Activo      bool     `json:"activo"`
}

// UpdateProfileRequest is the admin request to save branding. Saving marks
// the profile active.
type UpdateProfileRequest struct {
	Nombre  string `json:"nombre" binding:"required"`
	Emoji   string `json:"emoji,omitempty"`
	Tagline string `json:"tagline,omitempty"`
}

// DefaultProfile returns the built-in branding used before an administrator
// saves anything and when no configuration file is found.
func DefaultProfile() BusinessProfile {
	return BusinessProfile{
		Nombre:     "Mi Negocio",
		Emoji:      "🏪",
		Tagline:    "Estamos aquí para ayudarte",
		Primario:   "#667eea",
		Secundario: "#764ba2",
		FondoUser:  "#667eea",
		FondoBot:   "#f0f2f6",
		Sugerencias: []string{
			"📍 ¿Dónde están ubicados?",
			"🕐 ¿Cuál es el horario?",
			"💰 ¿Cuáles son los precios?",
			"📞 ¿Cómo los contacto?",
		},
	}
}

// WelcomeText returns the configured welcome message, or one synthesized
// from the business name when none is configured.
func (p BusinessProfile) WelcomeText() string {
	if p.Bienvenida != "" {
		return p.Bienvenida
	}
	return "¡Hola! 👋 Bienvenido a " + p.Nombre +
		". Soy tu asistente virtual y estoy aquí para ayudarte. ¿En qué puedo asistirte hoy?"
}
