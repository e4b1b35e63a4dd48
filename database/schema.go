// database/schema.go
package database

import (
	"context"
	"fmt"
)

func (mysqlDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS schools (
			id CHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_schools_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS courses (
			id CHAR(36) NOT NULL PRIMARY KEY,
			code VARCHAR(64) NOT NULL COLLATE utf8mb4_bin,
			name VARCHAR(300) NOT NULL,
			description TEXT NOT NULL,
			credits INT NOT NULL,
			school_id CHAR(36) NOT NULL,
			prerequisite_text TEXT NULL,
			breadths TEXT NOT NULL,
			gen_eds TEXT NOT NULL,
			level VARCHAR(16) NOT NULL,
			last_offered VARCHAR(64) NULL,
			avg_gpa DOUBLE NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_courses_code (code),
			KEY idx_courses_school (school_id),
			CONSTRAINT fk_courses_school FOREIGN KEY (school_id) REFERENCES schools (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS grade_distributions (
			id CHAR(36) NOT NULL PRIMARY KEY,
			course_id CHAR(36) NOT NULL,
			term VARCHAR(64) NOT NULL,
			a_count INT NOT NULL,
			ab_count INT NOT NULL,
			b_count INT NOT NULL,
			bc_count INT NOT NULL,
			c_count INT NOT NULL,
			d_count INT NOT NULL,
			f_count INT NOT NULL,
			total_graded INT NOT NULL,
			avg_gpa DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_grades_course_term (course_id, term),
			CONSTRAINT fk_grades_course FOREIGN KEY (course_id) REFERENCES courses (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS course_prerequisites (
			course_id CHAR(36) NOT NULL,
			prerequisite_id CHAR(36) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (course_id, prerequisite_id),
			KEY idx_prereq_target (prerequisite_id),
			CONSTRAINT fk_prereq_course FOREIGN KEY (course_id) REFERENCES courses (id) ON DELETE CASCADE,
			CONSTRAINT fk_prereq_target FOREIGN KEY (prerequisite_id) REFERENCES courses (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
}

func (sqliteDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS schools (
			id TEXT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id TEXT NOT NULL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			credits INTEGER NOT NULL,
			school_id TEXT NOT NULL REFERENCES schools (id),
			prerequisite_text TEXT NULL,
			breadths TEXT NOT NULL,
			gen_eds TEXT NOT NULL,
			level TEXT NOT NULL,
			last_offered TEXT NULL,
			avg_gpa REAL NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS grade_distributions (
			id TEXT NOT NULL PRIMARY KEY,
			course_id TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
			term TEXT NOT NULL,
			a_count INTEGER NOT NULL,
			ab_count INTEGER NOT NULL,
			b_count INTEGER NOT NULL,
			bc_count INTEGER NOT NULL,
			c_count INTEGER NOT NULL,
			d_count INTEGER NOT NULL,
			f_count INTEGER NOT NULL,
			total_graded INTEGER NOT NULL,
			avg_gpa REAL NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (course_id, term)
		)`,
		`CREATE TABLE IF NOT EXISTS course_prerequisites (
			course_id TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
			prerequisite_id TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (course_id, prerequisite_id)
		)`,
	}
}

// Migrate creates the pipeline's tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply %s schema: %w", s.dialect.name(), err)
		}
	}
	s.log.Info("schema up to date", "driver", s.dialect.name())
	return nil
}
