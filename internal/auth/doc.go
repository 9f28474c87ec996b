// Package auth provides accounts, roles and login sessions for SmartHome Core.
//
// It covers:
//   - Role and User persistence (RoleRepository, UserRepository)
//   - Argon2id password hashing behind the CredentialVerifier interface
//   - Login sessions in memory or Redis (SessionStore)
//   - The account Service used by the command line
//
// Users are identified by email. Self-registered users receive the default
// role (standard, id 2); role "admin" unlocks administrative commands.
package auth
