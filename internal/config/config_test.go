package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileSubstitutesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.UsedDefaults)
	assert.Equal(t, "Mi Negocio", cfg.Negocio.Nombre)
	assert.Equal(t, "🏪", cfg.Negocio.Emoji)
	assert.Len(t, cfg.Mensajes.Sugerencias, 4)
	assert.Equal(t, ModeDirect, cfg.IA.Modo)
	assert.False(t, cfg.IA.Habilitada)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadFileReplacesProfileWholesale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
negocio:
  nombre: "Café Andino"
  emoji: "☕"
  tagline: "El mejor café de la cuadra"
colores:
  primario: "#8B4513"
  secundario: "#D2691E"
mensajes:
  bienvenida: "¡Hola! ¿Un café?"
  sugerencias:
    - "¿Horario?"
    - "¿Tienen wifi?"
ia:
  habilitada: true
  modo: hybrid
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.UsedDefaults)
	assert.Equal(t, "Café Andino", cfg.Negocio.Nombre)
	assert.Equal(t, "#8B4513", cfg.Colores.Primario)
	assert.Equal(t, []string{"¿Horario?", "¿Tienen wifi?"}, cfg.Mensajes.Sugerencias)
	assert.Equal(t, ModeHybrid, cfg.IA.Modo)
	assert.True(t, cfg.IA.Habilitada)

	// Profile keys absent from the file are not defaulted individually.
	assert.Empty(t, cfg.Colores.FondoUsuario)

	// Operational sections keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadMalformedFileRecoversToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("negocio: [unclosed"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.UsedDefaults)
	assert.Contains(t, cfg.LoadWarning, "using defaults")
	assert.Equal(t, "Mi Negocio", cfg.Negocio.Nombre)
	assert.Len(t, cfg.Mensajes.Sugerencias, 4)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestProfileAssembly(t *testing.T) {
	cfg := Default()
	profile := cfg.Profile()

	assert.Equal(t, cfg.Negocio.Nombre, profile.Nombre)
	assert.Equal(t, cfg.Colores.Primario, profile.Primario)
	assert.Equal(t, cfg.Mensajes.Sugerencias, profile.Sugerencias)
	assert.False(t, profile.Activo)
	assert.Contains(t, profile.WelcomeText(), cfg.Negocio.Nombre)
}

func TestLoadDefaultsModeWhenUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("negocio:\n  nombre: X\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, cfg.IA.Modo)
}
