// Package repository define los contratos canónicos de la capa de datos del usuario.
//
// Cada contrato tiene una única definición y todas las capas dependen de ella:
//
//	┌─────────────────────────────────────────────┐
//	│   usecase.UserUseCase (domain/usecase)      │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│   UserRepository  →  entity.User            │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│   UserDriver      →  UserRecord (raw)       │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│   docstore.Store (memory, fs, pg, ...)      │
//	└─────────────────────────────────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - "No existe" en Find es (nil, nil), nunca un error
//   - Errores de dominio están en errors.go
package repository
