package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/docuser/internal/util"
)

// ─── Negocio ───

// UserID crea un campo para el uid del usuario.
func UserID(v string) zap.Field { return zap.String("uid", v) }

// Email crea un campo con el email enmascarado.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// ─── Store ───

// Store crea un campo para el nombre del adapter.
func Store(v string) zap.Field { return zap.String("store", v) }

// Collection crea un campo para la colección.
func Collection(v string) zap.Field { return zap.String("collection", v) }

// Key crea un campo para la key del documento.
func Key(v string) zap.Field { return zap.String("key", v) }

// Found indica si el documento existía.
func Found(v bool) zap.Field { return zap.Bool("found", v) }

// ─── Sistema ───

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (driver, repository, usecase).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Duration crea un campo para una duración.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// String crea un campo string genérico.
func String(key, v string) zap.Field { return zap.String(key, v) }
