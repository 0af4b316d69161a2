package doctor

import "github.com/Yasserk123/HealthVision-Projet/internal/model"

var catalog = []model.Specialty{
	{
		Title:       "Cardiologie",
		Description: "Diagnostic et traitement des maladies cardiovasculaires avec les technologies les plus avancées.",
		Services:    []string{"Échographie cardiaque", "Électrocardiogramme", "Test d'effort", "Holter cardiaque"},
		ImageURL:    "https://images.pexels.com/photos/4173239/pexels-photo-4173239.jpeg",
	},
	{
		Title:       "Neurologie",
		Description: "Prise en charge des troubles du système nerveux central et périphérique.",
		Services:    []string{"IRM cérébrale", "EEG", "Consultations mémoire", "Traitement migraines"},
		ImageURL:    "https://images.pexels.com/photos/4173258/pexels-photo-4173258.jpeg",
	},
	{
		Title:       "Pédiatrie",
		Description: "Soins médicaux spécialisés pour les nourrissons, enfants et adolescents.",
		Services:    []string{"Vaccinations", "Suivi croissance", "Urgences pédiatriques", "Développement"},
		ImageURL:    "https://images.pexels.com/photos/4173256/pexels-photo-4173256.jpeg",
	},
	{
		Title:       "Ophtalmologie",
		Description: "Diagnostic et traitement des pathologies oculaires et de la vision.",
		Services:    []string{"Examens de vue", "Chirurgie cataracte", "Traitement glaucome", "Rétinopathie"},
		ImageURL:    "https://images.pexels.com/photos/4173252/pexels-photo-4173252.jpeg",
	},
	{
		Title:       "Orthopédie",
		Description: "Traitement des troubles du système musculo-squelettique.",
		Services:    []string{"Chirurgie arthroscopique", "Prothèses", "Traumatologie", "Médecine du sport"},
		ImageURL:    "https://images.pexels.com/photos/4173250/pexels-photo-4173250.jpeg",
	},
	{
		Title:       "Médecine Générale",
		Description: "Soins de santé primaires et suivi médical global des patients.",
		Services:    []string{"Consultations générales", "Bilans de santé", "Prévention", "Suivi chronique"},
		ImageURL:    "https://images.pexels.com/photos/4173251/pexels-photo-4173251.jpeg",
	},
}
